package setup

import (
	"fmt"

	"github.com/flipper-app/flipper/internal/config"
	"github.com/flipper-app/flipper/internal/handler"
	"github.com/flipper-app/flipper/internal/jwt"
	"github.com/flipper-app/flipper/internal/markdown"
	"github.com/flipper-app/flipper/internal/rasterizer"
	"github.com/flipper-app/flipper/internal/service"
	"github.com/flipper-app/flipper/internal/storage/assets"
	"github.com/flipper-app/flipper/internal/storage/pg"
	"github.com/flipper-app/flipper/internal/utils"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage *pg.Storage
	Handler *handler.Handler
	Jwt     jwt.JwtService
	Config  *config.Config

	// MediaRoot is the on-disk directory served under /media/ when the
	// local asset backend is selected. Empty for remote backends.
	MediaRoot string
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	assetStorage, mediaRoot, err := newAssetStorage(&cfg.Public.Assets)
	if err != nil {
		return nil, err
	}

	raster := rasterizer.New(cfg.Public.RenderScale)

	auth := service.NewAuth(jwtService, cfg.Private.AdminEmail, cfg.Private.AdminPasswordHash)
	ingest := service.NewIngest(storage, assetStorage, raster, &utils.FlipbookValidator{}, cfg.Public)
	gallery := service.NewGallery(storage, markdown.New())
	account := service.NewAccount(storage)

	h := handler.New(auth, ingest, gallery, account, cfg)

	return &Dependencies{
		Storage:   storage,
		Handler:   h,
		Jwt:       jwtService,
		Config:    cfg,
		MediaRoot: mediaRoot,
	}, nil
}

func newAssetStorage(cfg *config.Assets) (service.AssetStorage, string, error) {
	switch cfg.Backend {
	case "http":
		if cfg.UploadURL == "" {
			return nil, "", fmt.Errorf("assets backend %q requires upload_url", cfg.Backend)
		}
		return assets.NewHTTP(cfg.UploadURL, cfg.UploadPreset, cfg.Folder), "", nil
	case "local":
		local, err := assets.NewLocal(cfg.LocalRoot, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return local, local.Root(), nil
	default:
		return nil, "", fmt.Errorf("unknown assets backend %q", cfg.Backend)
	}
}
