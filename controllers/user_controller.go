package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/breadMSA/Calories/models"
	"github.com/breadMSA/Calories/services"
	"github.com/breadMSA/Calories/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// GET /api/user
func (uc *UserController) GetProfile(c *gin.Context) {
	profile, err := uc.Users.GetProfile(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		log.Printf("user GET: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type saveProfileRequest struct {
	Height  *float64          `json:"height"`
	Weight  *float64          `json:"weight"`
	Age     *int              `json:"age"`
	Gender  string            `json:"gender"`
	Targets *models.TargetSet `json:"targets"`
}

// POST/PUT /api/user: all five fields required, stored wholesale with a
// server-stamped updatedAt.
func (uc *UserController) SaveProfile(c *gin.Context) {
	var req saveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if req.Height == nil || req.Weight == nil || req.Age == nil || req.Gender == "" || req.Targets == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	profile, err := uc.Users.SaveProfile(c.Request.Context(), models.UserProfile{
		Height:  *req.Height,
		Weight:  *req.Weight,
		Age:     *req.Age,
		Gender:  req.Gender,
		Targets: *req.Targets,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		log.Printf("user save: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /api/targets/recommended?weight=&height=&age=&gender=
// Serves the onboarding form: derived daily targets plus BMI, all of which
// the user may still override before saving.
func (uc *UserController) RecommendedTargets(c *gin.Context) {
	weight, err1 := strconv.ParseFloat(c.Query("weight"), 64)
	height, err2 := strconv.ParseFloat(c.Query("height"), 64)
	age, err3 := strconv.Atoi(c.Query("age"))
	gender := c.Query("gender")
	if err1 != nil || err2 != nil || err3 != nil ||
		(gender != models.GenderMale && gender != models.GenderFemale) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	resp := gin.H{"targets": utils.RecommendedTargets(weight, height, age, gender)}
	if bmi, err := utils.CalculateBMI(height, weight); err == nil {
		resp["bmi"] = bmi
		resp["bmiCategory"] = utils.BMICategory(bmi)
	}
	c.JSON(http.StatusOK, resp)
}
