package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ascend/internal/grades"
)

type GradeHandler struct{}

func NewGradeHandler() *GradeHandler {
	return &GradeHandler{}
}

type gradeResponse struct {
	Display      string              `json:"display"`
	NumericValue float64             `json:"numericValue"`
	Disciplines  []grades.Discipline `json:"disciplines"`
}

// @Summary      List supported grades
// @Tags         Grades
// @Produce      json
// @Param        discipline  query     string  false  "Filter by discipline (BOULDER, LEAD, TOP_ROPE)"
// @Success      200         {array}   gradeResponse
// @Failure      400         {object}  map[string]string
// @Router       /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	catalog := grades.All()
	if raw := c.Query("discipline"); raw != "" {
		discipline, err := grades.ParseDiscipline(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		catalog = grades.ForDiscipline(discipline)
	}

	out := make([]gradeResponse, 0, len(catalog))
	for _, g := range catalog {
		out = append(out, gradeResponse{
			Display:      g.Display,
			NumericValue: g.NumericValue,
			Disciplines:  g.Disciplines,
		})
	}
	c.JSON(http.StatusOK, out)
}
