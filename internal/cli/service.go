package cli

import (
	"calunga-catalog/internal/app"
)

func newCatalogService() (app.Service, error) {
	settings, err := loadSettings()
	if err != nil {
		return app.Service{}, err
	}
	return app.NewService(settings)
}
