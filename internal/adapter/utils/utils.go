package utils

import (
	"net/http"
	"sync"

	_ "github.com/akolanti/GoRAG/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

// regenerate the swagger spec after changing handler annotations:
// swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs

var (
	once   sync.Once
	router *chi.Mux
)

func GetNewUUID() string {
	return uuid.New().String()
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

type RouterClient struct {
	Router *chi.Mux
}

// GetRouter returns the process-wide router with the swagger UI and the
// prometheus scrape endpoint already mounted. Application routes are added
// by the server package.
func GetRouter() RouterClient {
	once.Do(func() {
		router = chi.NewRouter()
		initSwagger(router)
		router.Handle("/metrics", promhttp.Handler())
	})
	return RouterClient{Router: router}
}

func initSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
