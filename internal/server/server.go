package server

import (
	"errors"
	"log/slog"
	"net/http"

	"ctchen222/Connect-Four/internal/api/controller"
	"ctchen222/Connect-Four/internal/api/response"
	"ctchen222/Connect-Four/internal/api/service"
	"ctchen222/Connect-Four/internal/client"
	"ctchen222/Connect-Four/internal/hub"
	"ctchen222/Connect-Four/internal/hub/types"
	"ctchen222/Connect-Four/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub             *hub.Hub
	userService     service.UserService
	tableService    service.TableService
	userController  *controller.UserController
	tableController *controller.TableController
	upgrader        websocket.Upgrader
	webDir          string
}

func NewServer(h *hub.Hub, userService service.UserService, tableService service.TableService, webDir string) *Server {
	return &Server{
		hub:             h,
		userService:     userService,
		tableService:    tableService,
		userController:  controller.NewUserController(userService),
		tableController: controller.NewTableController(tableService),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		webDir: webDir,
	}
}

// Engine builds the gin router with every route the server exposes.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponseContent(c, "ok")
	})

	api := r.Group("/api")
	api.POST("/register", s.userController.Register)
	api.POST("/login", s.userController.Login)
	api.POST("/guest", s.userController.GuestLogin)

	tables := api.Group("/tables", s.authMiddleware())
	tables.POST("", s.tableController.Create)
	tables.GET("/:id", s.tableController.Get)

	r.GET("/ws", s.authMiddleware(), s.handleWebSocket)

	if s.webDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.webDir))))
	}
	return r
}

// handleWebSocket upgrades the connection and hands the client to the hub,
// which attaches it to the requested table.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	tableID := c.Query("table")
	if tableID == "" {
		response.ErrorResponse(c, http.StatusBadRequest, "missing table parameter")
		return
	}
	span.SetAttributes(attribute.String("table.id", tableID))

	if _, err := s.tableService.Get(ctx, tableID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Table lookup failed")
		if errors.Is(err, repository.ErrTableNotFound) {
			response.ErrorResponse(c, http.StatusNotFound, "table not found")
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, "could not load table")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	clientID := uuid.New().String()
	if claims, ok := claimsFrom(c); ok {
		span.SetAttributes(attribute.String("user.subject", claims.Subject))
	}
	span.SetAttributes(attribute.String("client.id", clientID))

	s.hub.Register() <- &types.RegistrationRequest{
		Client:  client.NewClient(clientID, tableID, conn),
		TableID: tableID,
		Ctx:     ctx,
	}
}
