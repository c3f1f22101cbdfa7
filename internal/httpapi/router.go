package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/cart"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/catalog"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/order"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/repair"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/review"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/upload"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/user"
)

// Deps collects everything the router needs so main stays a wiring exercise.
type Deps struct {
	Logger *log.Logger

	Users   user.Repository
	Catalog *catalog.Service
	Carts   cart.Repository
	Orders  order.Repository
	Reviews review.Repository
	Repairs repair.Repository
	Uploads *upload.Service

	Tokens           *auth.TokenManager
	MaxUploadBytes   int64
	CORSAllowOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(d.CORSAllowOrigins))

	authHandler := NewAuthHandler(d.Users, d.Tokens)
	catalogHandler := NewCatalogHandler(d.Catalog)
	cartHandler := NewCartHandler(d.Carts)
	orderHandler := NewOrderHandler(d.Orders)
	reviewHandler := NewReviewHandler(d.Reviews, d.Catalog)
	repairHandler := NewRepairHandler(d.Repairs)
	userHandler := NewUserHandler(d.Users)
	uploadHandler := NewUploadHandler(d.Uploads, d.MaxUploadBytes)

	authenticate := auth.Authenticate(d.Tokens, d.Users)
	adminOnly := auth.Authorize(auth.RoleAdmin)
	staffOnly := auth.Authorize(auth.RoleAdmin, auth.RoleTechnician)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authenticate).Get("/me", userHandler.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.GetDetail)
			r.Put("/{id}/status", userHandler.SetActive)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{idOrSlug}", catalogHandler.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, adminOnly)
				r.Post("/", catalogHandler.CreateProduct)
				r.Put("/{id}", catalogHandler.UpdateProduct)
				r.Delete("/{id}", catalogHandler.DeleteProduct)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCategories)
			r.With(authenticate, adminOnly).Post("/", catalogHandler.CreateCategory)
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", catalogHandler.ListBrands)
			r.With(authenticate, adminOnly).Post("/", catalogHandler.CreateBrand)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", cartHandler.Get)
			r.Post("/", cartHandler.AddItem)
			r.Put("/{id}", cartHandler.UpdateItem)
			r.Delete("/{id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", orderHandler.Place)
			r.Get("/", orderHandler.List)
			r.Get("/{id}", orderHandler.Get)
			r.With(adminOnly).Put("/{id}/status", orderHandler.UpdateStatus)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/product/{productId}", reviewHandler.ListByProduct)
			r.With(authenticate).Post("/", reviewHandler.Create)
		})

		r.Route("/repairs", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", repairHandler.Create)
			r.Get("/", repairHandler.ListMine)
			r.With(staffOnly).Get("/admin/all", repairHandler.ListAll)
			r.Get("/{id}", repairHandler.Get)
			r.With(staffOnly).Put("/{id}/status", repairHandler.UpdateStatus)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(authenticate, staffOnly)
			r.Post("/single", uploadHandler.Single)
			r.Post("/multiple", uploadHandler.Multiple)
		})
	})

	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Uploads.Dir())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	return r
}
