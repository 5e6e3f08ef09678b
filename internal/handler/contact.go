package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sereniteo/crm/internal/model"
	"github.com/sereniteo/crm/internal/store"
	"github.com/sereniteo/crm/internal/websocket"
)

type ContactHandler struct {
	contactStore *store.ContactStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewContactHandler(cs *store.ContactStore, hub *websocket.Hub, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contactStore: cs, hub: hub, logger: logger}
}

func (h *ContactHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List serves GET /api/contacts. A non-empty search param wins over the
// filter params; with neither, the full table is returned.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var contacts []model.Contact
	var err error

	if search := q.Get("search"); strings.TrimSpace(search) != "" {
		contacts, err = h.contactStore.Search(search)
	} else {
		contacts, err = h.contactStore.FilterContacts(store.Filter{
			Statut:     q.Get("statut"),
			Consultant: q.Get("consultant"),
			SCPI:       q.Get("scpi"),
			Annee:      q.Get("annee"),
		})
	}
	if err != nil {
		h.logger.Error("list contacts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch contacts"})
		return
	}

	if contacts == nil {
		contacts = []model.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid contact id"})
		return
	}

	contact, err := h.contactStore.GetByID(id)
	if err != nil {
		h.logger.Error("get contact", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch contact"})
		return
	}
	if contact == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Contact not found"})
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

type contactRequest struct {
	Nom          string  `json:"nom"`
	Email        *string `json:"email"`
	Telephone    *string `json:"telephone"`
	Mobile       *string `json:"mobile"`
	Adresse      *string `json:"adresse"`
	Statut       *string `json:"statut"`
	Consultant   *string `json:"consultant"`
	Commentaires *string `json:"commentaires"`
	DateCreation *string `json:"date_creation"`
	SCPI         *string `json:"scpi"`
	Marketing    *string `json:"marketing"`
	Montant      *int64  `json:"montant"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid contact data"})
		return
	}

	req.Nom = strings.TrimSpace(req.Nom)
	if req.Nom == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nom is required"})
		return
	}

	contact, err := h.contactStore.Create(&model.Contact{
		Nom:          req.Nom,
		Email:        req.Email,
		Telephone:    req.Telephone,
		Mobile:       req.Mobile,
		Adresse:      req.Adresse,
		Statut:       req.Statut,
		Consultant:   req.Consultant,
		Commentaires: req.Commentaires,
		DateCreation: req.DateCreation,
		SCPI:         req.SCPI,
		Marketing:    req.Marketing,
		Montant:      req.Montant,
	})
	if err != nil {
		h.logger.Error("create contact", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create contact"})
		return
	}

	h.broadcast(websocket.ContactCreated(contact.ID))
	writeJSON(w, http.StatusCreated, contact)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
