package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"minera/internal/config"
	"minera/internal/service"
)

type Handlers struct {
	TokenService    service.TokenService
	AdService       service.AdService
	DownloadService service.DownloadService
	Cfg             *config.Config
	Validate        *validator.Validate
}

func NewHandlers(services *service.Service, config *config.Config) *Handlers {
	return &Handlers{
		TokenService:    services.Token,
		AdService:       services.Ad,
		DownloadService: services.Download,
		Cfg:             config,
		Validate:        validator.New(),
	}
}

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"service": "minera-api"}, http.StatusOK)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// userIDFromContext достаёт идентификатор пользователя, положенный
// auth-middleware. Пустая строка - запрос не аутентифицирован.
func userIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		return ""
	}
	return userID
}
