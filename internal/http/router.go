package http

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/sqlstore"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/geocoder89/taskhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs from main.
type Deps struct {
	Config   config.Config
	Store    *sqlstore.DB
	Sessions *auth.Manager
	Revoker  session.Revoker
	Hasher   security.Hasher
	Registry *prometheus.Registry
	Prom     *observability.Prom
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	if d.Config.OTelEndpoint != "" {
		r.Use(otelgin.Middleware("taskhub"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders(d.Config.IsProd()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// health
	ping := func(ctx context.Context) error {
		if d.Store == nil {
			return nil
		}
		return d.Store.Ping(ctx)
	}
	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := sqlstore.NewUsersRepo(d.Store)
	projectsRepo := sqlstore.NewProjectsRepo(d.Store)
	tasksRepo := sqlstore.NewTasksRepo(d.Store)
	reportsRepo := sqlstore.NewReportsRepo(d.Store)

	engine := authz.NewEngine(tasksRepo)

	userSvc := service.NewUserService(usersRepo, d.Hasher)
	projectSvc := service.NewProjectService(projectsRepo, tasksRepo, usersRepo, engine, nil)
	taskSvc := service.NewTaskService(tasksRepo, projectsRepo, usersRepo, engine, nil)
	reportSvc := service.NewReportService(reportsRepo, projectsRepo, usersRepo, engine, nil)

	var loginObs handlers.LoginObserver
	var statusObs handlers.StatusObserver
	if d.Prom != nil {
		loginObs, statusObs = d.Prom, d.Prom
	}

	authHandler := handlers.NewAuthHandler(userSvc, d.Sessions, d.Revoker, loginObs, d.Config.IsProd())
	usersHandler := handlers.NewUsersHandler(userSvc)
	projectsHandler := handlers.NewProjectsHandler(projectSvc)
	tasksHandler := handlers.NewTasksHandler(taskSvc, statusObs)
	reportsHandler := handlers.NewReportsHandler(reportSvc)

	authMw := middlewares.NewAuthMiddleware(d.Sessions, d.Revoker, userSvc)
	loginLimiter := middlewares.NewRateLimiter(d.Config.LoginRateLimit, d.Config.LoginRateWindow)

	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	api.Use(middlewares.RequireJSON())

	authGroup := api.Group("/auth")
	authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authMw.RequireAuth(), authHandler.Me)

	secured := api.Group("")
	secured.Use(authMw.RequireAuth())

	adminOnly := middlewares.RequireRole(user.RoleAdministrator)
	staff := middlewares.RequireRole(user.RoleAdministrator, user.RoleManager)

	secured.GET("/usuarios", adminOnly, usersHandler.ListUsers)
	secured.POST("/usuarios", adminOnly, usersHandler.CreateUser)

	secured.GET("/proyectos", projectsHandler.ListProjects)
	secured.POST("/proyectos", staff, projectsHandler.CreateProject)
	secured.GET("/proyectos/:id", projectsHandler.GetProject)
	secured.PUT("/proyectos/:id", staff, projectsHandler.UpdateProject)
	secured.GET("/proyectos/:id/tablero", projectsHandler.GetBoard)

	secured.GET("/tareas", tasksHandler.ListTasks)
	secured.POST("/tareas", staff, tasksHandler.CreateTask)
	secured.GET("/tareas/:id", tasksHandler.GetTask)
	secured.PUT("/tareas/:id", tasksHandler.UpdateTask)

	secured.GET("/reportes/generales", adminOnly, reportsHandler.General)
	secured.GET("/reportes/proyecto/:id", reportsHandler.Project)
	secured.GET("/reportes/usuario/:id", reportsHandler.User)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}
