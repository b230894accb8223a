package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"ktvadmin/auth"
	"ktvadmin/booking"
	"ktvadmin/customers"
	"ktvadmin/dashboard"
	"ktvadmin/live"
	"ktvadmin/logger"
	"ktvadmin/memberships"
	"ktvadmin/middleware"
	"ktvadmin/orders"
	"ktvadmin/products"
	"ktvadmin/ratelim"
	"ktvadmin/rooms"
	"ktvadmin/utils"
)

// Pinger is the database liveness check behind /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Bookings    *booking.Handler
	Customers   *customers.Handler
	Rooms       *rooms.Handler
	Products    *products.Handler
	Orders      *orders.Handler
	Memberships *memberships.Handler
	Dashboard   *dashboard.Handler

	// Auth is nil when no JWT secret is configured.
	Auth *auth.Handler
	Hub  *live.Hub
	DB   Pinger
	Log  *logger.Logger
}

type Options struct {
	JWTSecret   []byte
	RateLimiter *ratelim.RateLimiter
	UploadDir   string
}

// guard wraps a data route with rate limiting and, when enabled, auth.
type guard func(httprouter.Handle) httprouter.Handle

func RoutesWrapper(router *httprouter.Router, h Handlers, opt Options) {
	protect := guard(func(next httprouter.Handle) httprouter.Handle {
		next = middleware.Authenticate(opt.JWTSecret, next)
		if opt.RateLimiter != nil {
			next = opt.RateLimiter.Limit(next)
		}
		return next
	})

	router.GET("/health", Health(h.DB, h.Hub))
	AddAuthRoutes(router, h, opt)
	AddBookingRoutes(router, h.Bookings, protect)
	AddCustomerRoutes(router, h.Customers, protect)
	AddRoomRoutes(router, h.Rooms, protect)
	AddProductRoutes(router, h.Products, protect)
	AddOrderRoutes(router, h.Orders, protect)
	AddMembershipRoutes(router, h.Memberships, protect)
	AddDashboardRoutes(router, h.Dashboard, protect)
	router.GET("/ws", middleware.Authenticate(opt.JWTSecret, live.Handler(h.Hub, h.Log)))
	AddStaticRoutes(router, opt.UploadDir)
}

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles("/static/uploads/*filepath", http.Dir(uploadDir))
}

func AddAuthRoutes(router *httprouter.Router, h Handlers, opt Options) {
	if h.Auth == nil {
		return
	}
	login := h.Auth.Login
	if opt.RateLimiter != nil {
		login = opt.RateLimiter.Limit(login)
	}
	router.POST("/auth/login", login)
}

func AddBookingRoutes(router *httprouter.Router, h *booking.Handler, protect guard) {
	router.GET("/bookings", protect(h.List))
	router.POST("/bookings", protect(h.Create))
	router.GET("/bookings/:id", protect(h.Get))
	router.PUT("/bookings/:id", protect(h.Update))
	router.DELETE("/bookings/:id", protect(h.Delete))
	router.GET("/bookings/:id/pass", protect(h.Pass))
}

func AddCustomerRoutes(router *httprouter.Router, h *customers.Handler, protect guard) {
	router.GET("/customers", protect(h.List))
	router.POST("/customers", protect(h.Create))
	router.GET("/customers/:id", protect(h.Get))
	router.PATCH("/customers/:id", protect(h.Patch))
	router.PUT("/customers/:id", protect(h.Put))
	router.DELETE("/customers/:id", protect(h.Delete))
}

func AddRoomRoutes(router *httprouter.Router, h *rooms.Handler, protect guard) {
	router.GET("/rooms", protect(h.List))
	router.POST("/rooms", protect(h.Create))
	router.PUT("/rooms", protect(h.UpdateFromBody))
	router.DELETE("/rooms", protect(h.Delete))
	router.GET("/rooms/:id", protect(h.Get))
	router.PATCH("/rooms/:id", protect(h.Patch))
	router.DELETE("/rooms/:id", protect(h.Delete))
}

func AddProductRoutes(router *httprouter.Router, h *products.Handler, protect guard) {
	router.GET("/products", protect(h.List))
	router.POST("/products", protect(h.Create))
	router.PUT("/products", protect(h.Update))
	router.DELETE("/products", protect(h.Delete))
	router.GET("/products/:id", protect(h.Get))
	router.DELETE("/products/:id", protect(h.Delete))
	router.POST("/products/:id/image", protect(h.UploadImage))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handler, protect guard) {
	router.GET("/orders", protect(h.List))
	router.POST("/orders", protect(h.Create))
	router.GET("/orders/:id", protect(h.Get))
	router.GET("/orders/:id/receipt", protect(h.Receipt))
}

func AddMembershipRoutes(router *httprouter.Router, h *memberships.Handler, protect guard) {
	router.GET("/memberships", protect(h.List))
	router.POST("/memberships", protect(h.Create))
	router.GET("/memberships/:id", protect(h.Get))
}

func AddDashboardRoutes(router *httprouter.Router, h *dashboard.Handler, protect guard) {
	router.GET("/dashboard", protect(h.Dashboard))
	router.GET("/all-data", protect(h.AllData))
}

// Health reports database reachability and live feed subscribers.
func Health(db Pinger, hub *live.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		status := utils.M{"status": "ok", "database": "up"}
		if hub != nil {
			status["liveSubscribers"] = hub.Clients(live.AllTopics)
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = "down"
				utils.RespondWithJSON(w, http.StatusServiceUnavailable, utils.M{"success": false, "error": "Database unreachable", "data": status})
				return
			}
		}
		utils.RespondOK(w, http.StatusOK, status, "")
	}
}
