package handlers

import (
	"errors"
	"net/http"

	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/models"
)

type articleContent struct {
	EN string `json:"en"`
	RU string `json:"ru"`
	CZ string `json:"cz"`
}

type articleView struct {
	ID       uint           `json:"id"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Date     string         `json:"date"`
	Image    *string        `json:"image"`
	Content  articleContent `json:"content"`
}

func (h *Handler) articleView(a *models.Article) articleView {
	v := articleView{
		ID:       a.ID,
		Title:    a.Title,
		Subtitle: a.Subtitle,
		Date:     a.Date,
		Content:  articleContent{EN: a.ContentEN, RU: a.ContentRU, CZ: a.ContentCZ},
	}
	if a.ImageKey != "" {
		u := h.Objects.URL(a.ImageKey)
		v.Image = &u
	}
	return v
}

// ListArticles serves GET /api/articles/.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Store.ListArticles(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	views := make([]articleView, len(articles))
	for i := range articles {
		views[i] = h.articleView(&articles[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": views})
}

// GetArticle serves GET /api/articles/{id}/.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	articleID, err := idParam(r, "id")
	if err != nil {
		errorJSON(w, http.StatusNotFound, "Article not found")
		return
	}
	article, err := h.Store.ArticleByID(r.Context(), articleID)
	if errors.Is(err, store.ErrNotFound) {
		errorJSON(w, http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.articleView(article))
}
