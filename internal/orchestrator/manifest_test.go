package orchestrator

import (
	"context"
	"testing"

	"github.com/novotea/nx-lib-bundle/internal/models"
	"github.com/stretchr/testify/require"
)

func TestBundle_SubpathImportsAreLookedUpAsWritten(t *testing.T) {
	f := newFixture(t)
	f.register(t, "core", "lodash/fp", "rxjs/operators")

	_, err := f.orchestrator().Bundle(context.Background(), "core")
	require.NoError(t, err)

	pkg := f.readManifest(t, "core")
	require.NotContains(t, pkg, "dependencies")
	require.NotContains(t, pkg, "peerDependencies")
	require.Contains(t, f.sink.messages, "core: No workspace dependency for lodash/fp, leaving it out of package.json")
	require.Contains(t, f.sink.messages, "core: No workspace dependency for rxjs/operators, leaving it out of package.json")
}

func TestBundle_DeclaredSubpathImportIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.register(t, "core", "lodash/fp")

	lookup := func(name string) (models.ClassifiedDependency, bool) {
		if name != "lodash/fp" {
			return models.ClassifiedDependency{}, false
		}
		return models.ClassifiedDependency{Classification: models.ClassificationRuntime, Version: "4.17.21"}, true
	}

	_, err := f.orchestrator(WithDependencyLookup(lookup)).Bundle(context.Background(), "core")
	require.NoError(t, err)

	pkg := f.readManifest(t, "core")
	require.Equal(t, map[string]interface{}{"lodash/fp": "4.17.21"}, pkg["dependencies"])
}
