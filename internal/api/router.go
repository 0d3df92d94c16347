package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/api/handlers"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/infrastructure/auth"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/usecase"
)

func NewRouter(
	taskService *usecase.TaskService,
	userService *usecase.UserService,
	authService *usecase.AuthService,
	jwtManager *auth.JWTManager,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService, authService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/refresh", userHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(handlers.AuthMiddleware(jwtManager))
				r.Post("/logout", userHandler.Logout)
				r.With(handlers.RequireAdmin).Get("/", userHandler.ListUsers)
				r.Get("/{id}", userHandler.GetProfile)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(jwtManager))
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.With(handlers.RequireAdmin).Put("/approve-status", taskHandler.ApproveStatus)
				r.With(handlers.RequireAdmin).Get("/audit", taskHandler.GetTaskAudit)
			})
		})
	})

	return r
}
