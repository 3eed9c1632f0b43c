package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"pinvent/docs"
	"pinvent/internal/config"
	apperrors "pinvent/internal/errors"
	"pinvent/internal/handler"
	"pinvent/internal/logging"
	appmiddleware "pinvent/internal/middleware"
)

// Register wires routes and middleware. gate guards every route that needs a session.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log logging.Logger,
	gate []echo.MiddlewareFunc,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	contactHandler *handler.ContactHandler,
) {
	e.HTTPErrorHandler = ErrorHandler(log)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = strings.TrimRight(host, "/")
	}

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Home Page")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/logout", authHandler.Logout)
	users.GET("/loginstatus", authHandler.LoginStatus)
	users.POST("/forgotpassword", authHandler.ForgotPassword)
	users.PUT("/resetpassword/:resetToken", authHandler.ResetPassword)
	users.GET("/getuser", userHandler.GetUser, gate...)
	users.PATCH("/updateuser", userHandler.UpdateUser, gate...)
	users.PATCH("/changepassword", authHandler.ChangePassword, gate...)

	products := api.Group("/products", gate...)
	products.POST("", productHandler.CreateProduct)
	products.GET("", productHandler.GetProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.PATCH("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)

	api.POST("/contactus", contactHandler.ContactUs, gate...)
}

// ErrorHandler renders every failure as {"error": "..."} and logs server errors.
func ErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			mapped := apperrors.MapErrorToHTTP(err)
			he = echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
		}

		var body apperrors.ErrorResponse
		switch msg := he.Message.(type) {
		case apperrors.ErrorResponse:
			body = msg
		case string:
			body = apperrors.ErrorResponse{Error: msg}
		default:
			body = apperrors.ErrorResponse{Error: http.StatusText(he.Code)}
		}

		if he.Code >= http.StatusInternalServerError {
			cause := err
			if he.Internal != nil {
				cause = he.Internal
			}
			log.Error(c.Request().Context(), "request failed",
				"status", he.Code,
				"path", c.Path(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"error", cause,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			log.Warn(c.Request().Context(), "write error response", "error", err)
		}
	}
}

func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if userID, ok := appmiddleware.UserIDFromContext(ctx); ok {
				attrs = append(attrs, "user_id", userID.String())
			}
			log.Info(ctx, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
