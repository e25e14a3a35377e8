package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/stride/internal/config"
	"github.com/example/stride/internal/handlers"
	"github.com/example/stride/internal/middleware"
	"github.com/example/stride/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, mailer services.Mailer) {
	otpService := services.NewOTPService(db, mailer, cfg.OTPExpires, cfg.OTPMaxAttempts)
	orderService := services.NewOrderService(db, cfg.DeliveryDays, cfg.ReturnWindowDays)

	authHandler := handlers.NewAuthHandler(db, cfg, otpService)
	resetHandler := handlers.NewPasswordResetHandler(db, otpService)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(orderService)
	profileHandler := handlers.NewProfileHandler(db)

	api := app.Group("/api")

	// User and account-recovery routes
	users := api.Group("/users")
	users.Post("/email", authHandler.IssueEmailOTP)
	users.Post("/emailVerify/:email", authHandler.VerifyEmailOTP)
	users.Post("/register/:email", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/logOut", authHandler.Logout)
	users.Post("/forgotPassword", resetHandler.ForgotPassword)
	users.Post("/verify-Otp/:otpId", resetHandler.VerifyResetOTP)
	users.Post("/resetPassword/:userId", resetHandler.ResetPassword)

	// Catalog
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	adminProducts := products.Group("", middleware.AuthMiddleware(cfg), middleware.AdminRequired(db))
	adminProducts.Post("/uploadProduct", productHandler.UploadProduct)
	adminProducts.Put("/updateProduct/:id", productHandler.UpdateProduct)
	adminProducts.Delete("/deleteProduct/:id", productHandler.DeleteProduct)

	// Authenticated routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/add", cartHandler.AddToCart)
	cart.Put("/update", cartHandler.UpdateCart)
	cart.Delete("/remove/:productId", cartHandler.RemoveFromCart)

	order := protected.Group("/order")
	order.Post("/", orderHandler.PlaceOrder)
	order.Get("/user", orderHandler.ListOrders)
	order.Put("/cancel/:orderId", orderHandler.CancelOrder)
	order.Put("/return/:orderId", orderHandler.RequestReturn)

	adminOrders := order.Group("", middleware.AdminRequired(db))
	adminOrders.Get("/", orderHandler.ListAllOrders)
	adminOrders.Put("/status/:orderId", orderHandler.AdvanceOrderStatus)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	address := protected.Group("/address")
	address.Get("/", profileHandler.ListAddresses)
	address.Post("/", profileHandler.CreateAddress)
	address.Put("/:id", profileHandler.UpdateAddress)
	address.Delete("/:id", profileHandler.DeleteAddress)
}
