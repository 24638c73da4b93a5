package validators

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validation functions
	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("spot_id", validateSpotID)
	validate.RegisterValidation("license_plate", validateLicensePlate)
	validate.RegisterValidation("clock_time", validateClockTime)
	validate.RegisterValidation("weekday", validateWeekday)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationError := ValidationError{
				Field:   err.Field(),
				Tag:     err.Tag(),
				Value:   fmt.Sprintf("%v", err.Value()),
				Message: getErrorMessage(err),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "spot_id":
		return "Spot ID must be 2-32 characters of letters, digits, or dashes"
	case "license_plate":
		return "Invalid license plate format"
	case "clock_time":
		return "Time must be in HH:MM format"
	case "weekday":
		return "Invalid weekday name"
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

var (
	spotIDRegex       = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{1,31}$`)
	licensePlateRegex = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
	clockTimeRegex    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validateSpotID(fl validator.FieldLevel) bool {
	return spotIDRegex.MatchString(fl.Field().String())
}

func validateLicensePlate(fl validator.FieldLevel) bool {
	plate := strings.ToUpper(strings.ReplaceAll(fl.Field().String(), " ", ""))
	return licensePlateRegex.MatchString(plate)
}

func validateClockTime(fl validator.FieldLevel) bool {
	return clockTimeRegex.MatchString(fl.Field().String())
}

func validateWeekday(fl validator.FieldLevel) bool {
	return weekdays[strings.ToLower(fl.Field().String())]
}
