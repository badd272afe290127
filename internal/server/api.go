package server

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/corazon/gymtrack/internal/log"
	"github.com/corazon/gymtrack/internal/model"
	"github.com/corazon/gymtrack/internal/tracker"
)

// APIHandler handles all API requests. One mutex guards the tracker so
// requests run one at a time.
type APIHandler struct {
	mu      sync.Mutex
	tracker *tracker.Tracker
}

func NewAPIHandler(t *tracker.Tracker) *APIHandler {
	return &APIHandler{tracker: t}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/foods", h.locked(h.ListFoods))
		api.POST("/foods", h.locked(h.CreateFood))
		api.GET("/foods/:id", h.locked(h.GetFood))
		api.GET("/foods/:id/form", h.locked(h.GetFoodForm))
		api.PUT("/foods/:id", h.locked(h.UpdateFood))
		api.DELETE("/foods/:id", h.locked(h.DeleteFood))

		api.GET("/meals", h.locked(h.ListMeals))
		api.POST("/meals", h.locked(h.CreateMeal))
		api.GET("/meals/:id", h.locked(h.GetMeal))
		api.PUT("/meals/:id", h.locked(h.UpdateMeal))
		api.DELETE("/meals/:id", h.locked(h.DeleteMeal))
		api.POST("/meals/:id/consume", h.locked(h.ConsumeMeal))

		api.GET("/consumed", h.locked(h.ListConsumed))
		api.DELETE("/consumed/:id", h.locked(h.DeleteConsumed))

		api.GET("/goals", h.locked(h.GetGoals))
		api.PUT("/goals", h.locked(h.UpdateTargets))
		api.POST("/goals/reset", h.locked(h.ResetGoals))
		api.POST("/goals/:goal/add", h.locked(h.AddNutrientValue))

		api.GET("/summary", h.locked(h.GetSummary))
		api.GET("/check", h.locked(h.GetCheck))

		api.GET("/workouts", h.locked(h.ListWorkouts))
		api.POST("/workouts", h.locked(h.CreateWorkout))
		api.PUT("/workouts/:id", h.locked(h.UpdateWorkout))
		api.DELETE("/workouts/:id", h.locked(h.DeleteWorkout))
	}
}

func (h *APIHandler) locked(fn gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.mu.Lock()
		defer h.mu.Unlock()
		fn(c)
	}
}

type foodRequest struct {
	Name        string            `json:"name"`
	Calories    float64           `json:"calories"`
	Protein     float64           `json:"protein"`
	Carbs       float64           `json:"carbs"`
	ServingType model.ServingType `json:"servingType"`
	UnitWeight  *float64          `json:"unitWeight"`
}

func (r foodRequest) input() tracker.FoodInput {
	return tracker.FoodInput{
		Name:        r.Name,
		Calories:    r.Calories,
		Protein:     r.Protein,
		Carbs:       r.Carbs,
		ServingType: r.ServingType,
		UnitWeight:  r.UnitWeight,
	}
}

type mealRequest struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Foods    []model.MealFood `json:"foods"`
}

func (r mealRequest) input() tracker.MealInput {
	return tracker.MealInput{Name: r.Name, Category: r.Category, Foods: r.Foods}
}

type workoutRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Weeks       int    `json:"weeks"`
}

func (r workoutRequest) input() tracker.WorkoutInput {
	return tracker.WorkoutInput{Name: r.Name, Description: r.Description, Weeks: r.Weeks}
}

type targetsRequest struct {
	Calories  *float64 `json:"calories"`
	Protein   *float64 `json:"protein"`
	Carbs     *float64 `json:"carbs"`
	Hydration *float64 `json:"hydration"`
}

type amountRequest struct {
	Amount *float64 `json:"amount"`
}

func (h *APIHandler) ListFoods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"foods": h.tracker.Foods()})
}

func (h *APIHandler) GetFood(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	food, err := h.tracker.Food(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// GetFoodForm returns a food with per-unit values for unit-based editing.
func (h *APIHandler) GetFoodForm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	form, err := h.tracker.FoodForm(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"food":     form.Food,
		"calories": form.Calories,
		"protein":  form.Protein,
		"carbs":    form.Carbs,
	})
}

func (h *APIHandler) CreateFood(c *gin.Context) {
	var req foodRequest
	if !bindJSON(c, &req) {
		return
	}
	food, err := h.tracker.AddFood(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

// UpdateFood takes values as entered, like CreateFood, and replaces the food.
func (h *APIHandler) UpdateFood(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req foodRequest
	if !bindJSON(c, &req) {
		return
	}
	food, err := tracker.BuildFood(id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	food, err = h.tracker.UpdateFood(c.Request.Context(), food)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func (h *APIHandler) DeleteFood(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	affected, err := h.tracker.DeleteFood(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "affectedMeals": affected})
}

func (h *APIHandler) ListMeals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"meals": h.tracker.Meals()})
}

func (h *APIHandler) GetMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	meal, err := h.tracker.Meal(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *APIHandler) CreateMeal(c *gin.Context) {
	var req mealRequest
	if !bindJSON(c, &req) {
		return
	}
	meal, err := h.tracker.AddMeal(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (h *APIHandler) UpdateMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req mealRequest
	if !bindJSON(c, &req) {
		return
	}
	meal, err := h.tracker.UpdateMeal(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (h *APIHandler) DeleteMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.tracker.DeleteMeal(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *APIHandler) ConsumeMeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	consumed, err := h.tracker.ConsumeMeal(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"consumed": consumed, "goals": h.tracker.Goals()})
}

func (h *APIHandler) ListConsumed(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"consumed": h.tracker.ConsumedMeals()})
}

func (h *APIHandler) DeleteConsumed(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.tracker.DeleteConsumedMeal(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "goals": h.tracker.Goals()})
}

func (h *APIHandler) GetGoals(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Goals())
}

func (h *APIHandler) UpdateTargets(c *gin.Context) {
	var req targetsRequest
	if !bindJSON(c, &req) {
		return
	}
	goals, err := h.tracker.UpdateTargets(c.Request.Context(), tracker.TargetsInput{
		Calories:  req.Calories,
		Protein:   req.Protein,
		Carbs:     req.Carbs,
		Hydration: req.Hydration,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (h *APIHandler) ResetGoals(c *gin.Context) {
	if err := h.tracker.ResetDailyValues(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tracker.Goals())
}

func (h *APIHandler) AddNutrientValue(c *gin.Context) {
	goal, err := tracker.ParseGoal(c.Param("goal"))
	if err != nil {
		writeError(c, err)
		return
	}
	var req amountRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}
	v, err := h.tracker.AddNutrientValue(c.Request.Context(), goal, *req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal, "current": v.Current, "target": v.Target})
}

func (h *APIHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Summary())
}

func (h *APIHandler) GetCheck(c *gin.Context) {
	report, err := h.tracker.Check(c.Request.Context(), false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *APIHandler) ListWorkouts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workouts": h.tracker.Workouts()})
}

func (h *APIHandler) CreateWorkout(c *gin.Context) {
	var req workoutRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.tracker.AddWorkout(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *APIHandler) UpdateWorkout(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req workoutRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.tracker.UpdateWorkout(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *APIHandler) DeleteWorkout(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.tracker.DeleteWorkout(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, tracker.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	}
}
