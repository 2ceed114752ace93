package webhookx

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/maachbazar/whatsapp-agent/errx"
	"github.com/maachbazar/whatsapp-agent/logx"
	"github.com/maachbazar/whatsapp-agent/msgx/providers/msgxwhatsapp"
)

// WebhookPaths are the mount points of the webhook
var WebhookPaths = []string{"/webhook", "/api/webhook"}

// Routes registers the controller on a Fiber app
type Routes struct {
	controller *Controller
}

// NewRoutes creates the Fiber routes for controller
func NewRoutes(controller *Controller) *Routes {
	return &Routes{controller: controller}
}

// NewApp creates a Fiber app with CORS headers, panic recovery and the
// webhook and health routes
func NewApp(controller *Controller) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               controller.Settings().ServiceName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(corsHeaders)
	app.Use(fiberrecover.New())
	NewRoutes(controller).RegisterRoutes(app)
	return app
}

// RegisterRoutes mounts GET / and the webhook paths
func (r *Routes) RegisterRoutes(app *fiber.App) {
	app.Get("/", r.health)

	for _, path := range WebhookPaths {
		app.Add(fiber.MethodGet, path, r.verify)
		app.Post(path, r.receive)
		app.Options(path, r.options)
		app.All(path, r.methodNotAllowed)
	}
}

func corsHeaders(c *fiber.Ctx) error {
	for k, v := range CORSHeaders {
		c.Set(k, v)
	}
	return c.Next()
}

func (r *Routes) verify(c *fiber.Ctx) error {
	return send(c, r.controller.Verify(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	))
}

func (r *Routes) receive(c *fiber.Ctx) error {
	// fasthttp reuses the request buffer once the handler returns
	body := bytes.Clone(c.Body())
	return send(c, r.controller.Receive(c.UserContext(), c.Get(msgxwhatsapp.SignatureHeader), body))
}

func (r *Routes) options(c *fiber.Ctx) error {
	return send(c, r.controller.Options())
}

func (r *Routes) methodNotAllowed(c *fiber.Ctx) error {
	return send(c, r.controller.MethodNotAllowed(c.Method()))
}

func (r *Routes) health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(r.controller.Health())
}

func send(c *fiber.Ctx, res Result) error {
	if res.ContentType != "" {
		c.Set(fiber.HeaderContentType, res.ContentType)
	}
	return c.Status(res.Status).Send(res.Body)
}

func errorHandler(c *fiber.Ctx, err error) error {
	var xerr *errx.Error
	if errors.As(err, &xerr) {
		return xerr.ToFiber(c)
	}

	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	if code >= fiber.StatusInternalServerError {
		logx.Error("Request %s %s failed: %v", c.Method(), c.Path(), err)
	}
	c.Set(fiber.HeaderContentType, contentTypeText)
	return c.Status(code).SendString(http.StatusText(code))
}
