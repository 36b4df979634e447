package catalog

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsabonet/milagre-car-site/internal/logger"
)

type Car struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	Mileage      int       `json:"mileage"`
	Fuel         string    `json:"fuel"`
	Transmission string    `json:"transmission"`
	Color        string    `json:"color"`
	Location     string    `json:"location"`
	CategoryID   *string   `json:"category_id"`
	Description  string    `json:"description"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
}

// carInput accepts both the canonical field names and the aliases the
// frontend historically sent (model/make/fuel_type).
type carInput struct {
	Name         string  `json:"name"`
	Model        string  `json:"model"`
	Brand        string  `json:"brand"`
	Make         string  `json:"make"`
	Year         int     `json:"year"`
	Price        float64 `json:"price"`
	Mileage      int     `json:"mileage"`
	Fuel         string  `json:"fuel"`
	FuelType     string  `json:"fuel_type"`
	Transmission string  `json:"transmission"`
	Color        string  `json:"color"`
	Location     string  `json:"location"`
	CategoryID   *string `json:"category_id"`
	Description  string  `json:"description"`
	Featured     bool    `json:"featured"`
}

var transmissionNames = map[string]string{
	"manual":          "Manual",
	"automatic":       "Automática",
	"automática":      "Automática",
	"automatica":      "Automática",
	"cvt":             "CVT",
	"semi-automática": "Semi-automática",
	"semi-automatica": "Semi-automática",
}

var fuelNames = map[string]string{
	"gasolina": "Gasolina",
	"diesel":   "Diesel",
}

// normalize maps frontend aliases onto the canonical fields and fixes
// casing on the enumerated values.
func (in *carInput) normalize() {
	if in.Name == "" && in.Model != "" {
		in.Name = in.Model
	}
	if in.Brand == "" && in.Make != "" {
		in.Brand = in.Make
	}
	if in.Fuel == "" && in.FuelType != "" {
		in.Fuel = in.FuelType
	}
	if canonical, ok := transmissionNames[strings.ToLower(in.Transmission)]; ok {
		in.Transmission = canonical
	}
	if canonical, ok := fuelNames[strings.ToLower(in.Fuel)]; ok {
		in.Fuel = canonical
	}
	if in.Fuel == "" {
		in.Fuel = "Gasolina"
	}
	if in.Transmission == "" {
		in.Transmission = "Manual"
	}
}

func (in *carInput) validate() string {
	if in.Name == "" {
		return "Nome do modelo é obrigatório"
	}
	if in.Brand == "" {
		return "Marca é obrigatória"
	}
	if in.Year < 1990 || in.Year > 2030 {
		return "Ano inválido"
	}
	if in.Price < 0 {
		return "Preço inválido"
	}
	return ""
}

const carColumns = `id, name, brand, year, price, mileage, fuel,
	transmission, color, location, category_id, description, featured, created_at`

func scanCar(row interface{ Scan(...any) error }) (Car, error) {
	var car Car
	err := row.Scan(
		&car.ID, &car.Name, &car.Brand, &car.Year, &car.Price,
		&car.Mileage, &car.Fuel, &car.Transmission, &car.Color,
		&car.Location, &car.CategoryID, &car.Description,
		&car.Featured, &car.CreatedAt,
	)
	return car, err
}

func (h *Handler) ListCars(c *gin.Context) {
	rows, err := h.db.QueryContext(c.Request.Context(), `
		SELECT `+carColumns+`
		FROM cars
		ORDER BY created_at DESC, name
	`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}
	defer rows.Close()

	cars := []Car{}
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
			return
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": cars, "count": len(cars)})
}

func (h *Handler) GetCar(c *gin.Context) {
	id, ok := pathID(c, "Carro não encontrado")
	if !ok {
		return
	}

	row := h.db.QueryRowContext(c.Request.Context(), `
		SELECT `+carColumns+`
		FROM cars
		WHERE id = $1
	`, id)

	car, err := scanCar(row)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Carro não encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	c.JSON(http.StatusOK, car)
}

func (h *Handler) CreateCar(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}

	var in carInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	in.normalize()
	if msg := in.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var id string
	err := h.db.QueryRowContext(c.Request.Context(), `
		INSERT INTO cars (name, brand, year, price, mileage, fuel,
			transmission, color, location, category_id, description, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`,
		in.Name, in.Brand, in.Year, in.Price, in.Mileage, in.Fuel,
		in.Transmission, in.Color, in.Location, in.CategoryID,
		in.Description, in.Featured,
	).Scan(&id)

	if err != nil {
		logger.Error("failed to create car", map[string]any{
			"username": p.Username,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erro ao criar carro"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) UpdateCar(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Carro não encontrado")
	if !ok {
		return
	}

	var in carInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	in.normalize()
	if msg := in.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	res, err := h.db.ExecContext(c.Request.Context(), `
		UPDATE cars
		SET name = $1, brand = $2, year = $3, price = $4, mileage = $5,
			fuel = $6, transmission = $7, color = $8, location = $9,
			category_id = $10, description = $11, featured = $12,
			updated_at = NOW()
		WHERE id = $13
	`,
		in.Name, in.Brand, in.Year, in.Price, in.Mileage, in.Fuel,
		in.Transmission, in.Color, in.Location, in.CategoryID,
		in.Description, in.Featured, id,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Carro não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Carro atualizado com sucesso"})
}

func (h *Handler) DeleteCar(c *gin.Context) {
	_, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "Carro não encontrado")
	if !ok {
		return
	}

	res, err := h.db.ExecContext(c.Request.Context(), `
		DELETE FROM cars WHERE id = $1
	`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Carro não encontrado"})
		return
	}

	c.Status(http.StatusNoContent)
}
