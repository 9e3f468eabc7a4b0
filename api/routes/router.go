package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/controllers"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/api/middleware"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/address"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/auth"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/bookings"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/cart"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/checkout"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/coupons"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/orders"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/payments"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/products"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/reviews"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/users"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/internal/wishlist"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/config"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/logger"
	pkgredis "github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/redis"
)

type Params struct {
	Config *config.Config
	Logger *logger.Logger

	// Optional infrastructure. Nil values disable the matching middleware.
	HTTPMetrics    func(http.Handler) http.Handler
	MetricsHandler http.Handler
	Idempotency    pkgredis.IdempotencyStore
	RateLimiter    middleware.AuthLimiter
	Readiness      map[string]controllers.Pinger

	Users     users.Service
	Auth      auth.Service
	Addresses address.Service
	Products  products.Service
	Cart      cart.Service
	Checkout  checkout.Service
	Payments  payments.Service
	Orders    orders.Service
	Reviews   reviews.Service
	Wishlist  wishlist.Service
	Coupons   coupons.Service
	Bookings  bookings.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics)
	}
	r.Use(
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Identity(cfg.JWT, logg),
	)

	adminOnly := middleware.RequireAdmin(p.Users, logg)
	maxUpload := int64(cfg.Storage.MaxUploadMB) << 20

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})
	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(p.Idempotency, cfg.Eventing.IdempotencyTTL, logg))

		r.Route("/auth", func(r chi.Router) {
			login := r.With()
			register := r.With()
			if p.RateLimiter != nil {
				login = r.With(middleware.AuthRateLimit(loginThrottle(cfg), p.RateLimiter, logg))
				register = r.With(middleware.AuthRateLimit(registerThrottle(cfg), p.RateLimiter, logg))
			}
			login.Post("/login", controllers.AuthLogin(p.Auth, logg))
			register.Post("/register", controllers.AuthRegister(p.Auth, logg))
			r.Get("/profile", controllers.ProfileGet(p.Users, logg))
			r.Put("/profile", controllers.ProfileUpdate(p.Users, logg))
			r.Post("/password", controllers.AuthChangePassword(p.Auth, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(p.Addresses, logg))
			r.Post("/", controllers.AddressCreate(p.Addresses, logg))
			r.Put("/{id}", controllers.AddressUpdate(p.Addresses, logg))
			r.Delete("/{id}", controllers.AddressDelete(p.Addresses, logg))
		})

		r.Get("/categories", controllers.ProductCategories(p.Products, logg))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(p.Products, logg))
			r.Get("/{id}", controllers.ProductGet(p.Products, logg))
			r.Get("/{id}/stock", controllers.ProductStock(p.Products, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(p.Cart, logg))
			r.Post("/add", controllers.CartAdd(p.Cart, logg))
			r.Post("/update", controllers.CartUpdate(p.Cart, logg))
			r.Post("/remove", controllers.CartRemove(p.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/selection", controllers.CheckoutSaveSelection(p.Checkout, logg))
			r.Get("/review", controllers.CheckoutReview(p.Checkout, logg))
			r.Post("/place-order", controllers.CheckoutPlaceOrder(p.Orders, logg))
		})

		r.Route("/payments/razorpay", func(r chi.Router) {
			r.Post("/create-order", controllers.PaymentCreateOrder(p.Payments, logg))
			r.Post("/verify", controllers.PaymentVerify(p.Payments, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/user", controllers.OrdersForUser(p.Orders, logg))
			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.AdminOrders(p.Orders, logg))
				r.Get("/status/{status}", controllers.AdminOrdersByStatus(p.Orders, logg))
				r.Get("/statistics", controllers.AdminOrderStatistics(p.Orders, logg))
				r.Post("/{orderId}/status", controllers.AdminUpdateOrderStatus(p.Orders, logg))
			})
			r.Get("/{orderId}", controllers.OrderDetail(p.Orders, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", controllers.ReviewCreate(p.Reviews, logg))
			r.Get("/product/{productId}", controllers.ProductReviews(p.Reviews, logg))
			r.Get("/product/{productId}/stats", controllers.ProductReviewStats(p.Reviews, logg))
			r.Get("/eligible-products", controllers.ReviewEligibleProducts(p.Reviews, logg))
			r.Get("/user", controllers.ReviewsForUser(p.Reviews, logg))
			r.Post("/{reviewId}/helpful", controllers.ReviewMarkHelpful(p.Reviews, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(p.Wishlist, logg))
			r.Get("/count", controllers.WishlistCount(p.Wishlist, logg))
			r.Post("/", controllers.WishlistAddItem(p.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemoveItem(p.Wishlist, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/validate", controllers.CouponValidate(p.Coupons, logg))
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.CouponList(p.Coupons, logg))
				r.Post("/", controllers.CouponCreate(p.Coupons, logg))
				r.Put("/{id}", controllers.CouponUpdate(p.Coupons, logg))
				r.Delete("/{id}", controllers.CouponDelete(p.Coupons, logg))
			})
		})

		r.Route("/service-bookings", func(r chi.Router) {
			r.Post("/", controllers.BookingCreate(p.Bookings, logg))
			r.Get("/by-user", controllers.BookingsForOwner(p.Bookings, logg))
			r.Get("/by-user/type", controllers.BookingsForOwnerByType(p.Bookings, logg))
			r.Get("/{id}", controllers.BookingGet(p.Bookings, logg))
			r.Post("/{id}/photo", controllers.BookingUploadPhoto(p.Bookings, maxUpload, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.BookingList(p.Bookings, logg))
				r.Get("/status/{status}", controllers.BookingsByStatus(p.Bookings, logg))
				r.Get("/upcoming", controllers.BookingsUpcoming(p.Bookings, logg))
				r.Get("/date/{date}", controllers.BookingsByDate(p.Bookings, logg))
				r.Get("/search", controllers.BookingSearch(p.Bookings, logg))
				r.Get("/stats", controllers.BookingStats(p.Bookings, logg))
				r.Get("/pet-walking", controllers.BookingPetWalking(p.Bookings, logg))
				r.Patch("/{id}/status", controllers.BookingUpdateStatus(p.Bookings, logg))
				r.Delete("/{id}", controllers.BookingDelete(p.Bookings, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/users", controllers.AdminListUsers(p.Users, logg))
			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateProduct(p.Products, logg))
				r.Put("/{id}", controllers.AdminUpdateProduct(p.Products, logg))
				r.Delete("/{id}", controllers.AdminDeleteProduct(p.Products, logg))
				r.Patch("/{id}/variant/{variantId}/stock", controllers.AdminUpdateVariantStock(p.Products, logg))
				r.Post("/{id}/image", controllers.AdminUploadProductImage(p.Products, maxUpload, logg))
			})
		})
	})

	return r
}

func loginThrottle(cfg *config.Config) middleware.AuthThrottle {
	return middleware.AuthThrottle{
		Route:      "login",
		Window:     cfg.AuthRateLimit.LoginWindow,
		PerIP:      cfg.AuthRateLimit.LoginIPLimit,
		PerAccount: cfg.AuthRateLimit.LoginEmailLimit,
	}
}

func registerThrottle(cfg *config.Config) middleware.AuthThrottle {
	return middleware.AuthThrottle{
		Route:      "register",
		Window:     cfg.AuthRateLimit.RegisterWindow,
		PerIP:      cfg.AuthRateLimit.RegisterIPLimit,
		PerAccount: cfg.AuthRateLimit.RegisterEmailLimit,
	}
}
