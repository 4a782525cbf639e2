package media

import (
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/server/respond"
	"github.com/gin-gonic/gin"
)

var ErrPathRequired = apperr.Validation("MediaPathRequired", "path or url is required")

type Handler struct {
	signer *Signer
}

func NewHandler(s *Signer) *Handler {
	return &Handler{signer: s}
}

// ResolveURL issues a fresh read URL for ?path=, or for the object behind a stored ?url=.
func (h *Handler) ResolveURL(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" {
		if raw := c.Query("url"); raw != "" {
			p, err := h.signer.ExtractPath(raw)
			if err != nil {
				respond.Error(c, err)
				return
			}
			path = p
		}
	}
	if path == "" {
		respond.Error(c, ErrPathRequired)
		return
	}

	u, err := h.signer.URL(path)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"path": path, "url": u})
}

// NewObjectPath suggests the storage path for an upload of ?product=&variant=&ext=.
func (h *Handler) NewObjectPath(c *gin.Context) {
	product := strings.TrimSpace(c.Query("product"))
	if product == "" {
		respond.Error(c, ErrPathRequired)
		return
	}
	respond.OK(c, gin.H{"path": ObjectPath(product, c.Query("variant"), c.Query("ext"), time.Now())})
}
