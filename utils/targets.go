package utils

import (
	"errors"
	"math"

	"github.com/breadMSA/Calories/models"
)

// SodiumLimitMg is the fixed daily sodium upper bound (mg).
const SodiumLimitMg = 2300

// activityMultiplier is the fixed moderate-activity factor applied to BMR.
const activityMultiplier = 1.55

// CalculateBMR computes the Mifflin-St Jeor basal metabolic rate.
// Weight in kg, height in cm, age in years.
func CalculateBMR(weight, height float64, age int, gender string) float64 {
	base := 10*weight + 6.25*height - 5*float64(age)
	if gender == models.GenderMale {
		return base + 5
	}
	return base - 161
}

// RecommendedTargets derives the daily nutrient targets from body metrics:
// calories from BMR at moderate activity, protein at 1.4 g/kg, water at
// 30 ml/kg, sodium at the fixed limit. The user may override any of these
// before saving.
func RecommendedTargets(weight, height float64, age int, gender string) models.TargetSet {
	bmr := CalculateBMR(weight, height, age, gender)
	return models.TargetSet{
		Calories: int(math.Round(bmr * activityMultiplier)),
		Protein:  int(math.Round(weight * 1.4)),
		Sodium:   SodiumLimitMg,
		Water:    int(math.Round(weight * 30)),
	}
}

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}
	h := heightCm / 100.0
	return weightKg / (h * h), nil
}

// BMICategory labels a BMI value with the WHO class.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	case bmi < 35.0:
		return "Obesity class I"
	case bmi < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}
