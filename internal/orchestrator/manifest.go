package orchestrator

import (
	"github.com/novotea/nx-lib-bundle/internal/models"
)

// assembleManifest builds package.json from the legacy pass imports. Each
// import is looked up exactly as written; imports the lookup cannot classify
// are left out of the manifest without a warning.
func (r *run) assembleManifest(legacy *models.BuildArtifact) (*models.PackageManifest, error) {
	manifest := models.NewPackageManifest(r.lib.ImportName, r.lib.Name, r.o.ws.Version())

	for _, imp := range legacy.Imports {
		dep, ok := r.o.lookup(imp)
		if !ok {
			r.message("No workspace dependency for " + imp + ", leaving it out of package.json")
			continue
		}

		err := manifest.AddDependency(models.ClassifiedDependency{
			Name:           imp,
			Classification: dep.Classification,
			Version:        dep.Version,
		})
		if err != nil {
			return nil, err
		}
	}

	return manifest, nil
}
