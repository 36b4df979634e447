package catalog

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMessage is the one public write in the API: site visitors send
// contact messages without authenticating.
func (h *Handler) CreateMessage(c *gin.Context) {
	var in struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Name == "" || in.Email == "" || in.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, email e mensagem são obrigatórios"})
		return
	}

	var id string
	err := h.db.QueryRowContext(c.Request.Context(), `
		INSERT INTO contact_messages (name, email, phone, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, in.Name, in.Email, in.Phone, in.Subject, in.Message).Scan(&id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      id,
		"message": "Mensagem enviada com sucesso",
	})
}

func (h *Handler) ListMessages(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}

	rows, err := h.db.QueryContext(c.Request.Context(), `
		SELECT id, name, email, phone, subject, message, is_read, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}
	defer rows.Close()

	messages := []ContactMessage{}
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Email, &m.Phone,
			&m.Subject, &m.Message, &m.IsRead, &m.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
			return
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": messages, "count": len(messages)})
}

func (h *Handler) MarkMessageRead(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Mensagem não encontrada")
	if !ok {
		return
	}

	res, err := h.db.ExecContext(c.Request.Context(), `
		UPDATE contact_messages SET is_read = true WHERE id = $1
	`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mensagem não encontrada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mensagem marcada como lida"})
}
