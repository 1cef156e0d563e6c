package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *RelayHandler) {
	r.Route("/api", func(api chi.Router) {
		api.Use(httputil.RecoverMiddleware)

		api.Post("/chat", h.Chat)
		api.Post("/transcribe", h.Transcribe)
	})

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
}

// NewRouter builds the public router: request ids, CORS for origins, relay routes.
func NewRouter(h *RelayHandler, origins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID, CORS(origins))
	RegisterRoutes(r, h)
	return r
}
