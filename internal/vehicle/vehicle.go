// Package vehicle provides vehicle directory operations.
package vehicle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lotworks/reconboard/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a VIN does not reference a known vehicle.
var ErrNotFound = errors.New("vehicle: not found")

// ErrDuplicateVIN is returned when creating a vehicle whose VIN already exists.
var ErrDuplicateVIN = errors.New("vehicle: VIN already registered")

// CreateOpts holds parameters for registering a new vehicle.
type CreateOpts struct {
	VIN      string
	Make     string
	Model    string
	Year     int
	Mileage  int
	Color    string
	Priority string
	Location string
}

// ListFilters holds optional filters for the board listing.
type ListFilters struct {
	Status   string
	Make     string
	Priority string
	Search   string // matches VIN, make, or model
	Page     int
	Limit    int
}

// NormalizeVIN upper-cases a VIN for storage and lookup.
func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// Create registers a new vehicle on the board.
func Create(db *gorm.DB, opts CreateOpts) (*models.Vehicle, error) {
	vin := NormalizeVIN(opts.VIN)
	if vin == "" {
		return nil, fmt.Errorf("vehicle: VIN is required")
	}
	if opts.Make == "" || opts.Model == "" {
		return nil, fmt.Errorf("vehicle: make and model are required")
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(opts.Priority) {
		return nil, fmt.Errorf("vehicle: invalid priority %q", opts.Priority)
	}

	v := models.Vehicle{
		VIN:      vin,
		Make:     opts.Make,
		Model:    opts.Model,
		Year:     opts.Year,
		Mileage:  opts.Mileage,
		Color:    opts.Color,
		Status:   models.StatusPending,
		Priority: opts.Priority,
		Location: opts.Location,
	}

	if err := db.Create(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVIN, vin)
		}
		return nil, fmt.Errorf("vehicle: create %s: %w", vin, err)
	}
	return &v, nil
}

// Get retrieves a vehicle by VIN, case-insensitively, preloading the
// assignee and the timeline in descending timestamp order.
func Get(db *gorm.DB, vin string) (*models.Vehicle, error) {
	vin = NormalizeVIN(vin)
	var v models.Vehicle
	err := db.Preload("Assignee").
		Preload("Timeline", func(q *gorm.DB) *gorm.DB {
			return q.Order("created_at DESC")
		}).
		Where("vin = ?", vin).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, vin)
		}
		return nil, fmt.Errorf("vehicle: get %s: %w", vin, err)
	}
	return &v, nil
}

// List returns board vehicles matching the filters plus the unpaged total.
func List(db *gorm.DB, f ListFilters) ([]models.Vehicle, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	q := db.Model(&models.Vehicle{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Make != "" {
		q = q.Where("make = ?", f.Make)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Search != "" {
		like := "%" + strings.ToUpper(f.Search) + "%"
		q = q.Where("vin LIKE ? OR UPPER(make) LIKE ? OR UPPER(model) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("vehicle: count: %w", err)
	}

	var vehicles []models.Vehicle
	if err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&vehicles).Error; err != nil {
		return nil, 0, fmt.Errorf("vehicle: list: %w", err)
	}
	return vehicles, total, nil
}

// mutableFields are the columns a partial update may touch. VIN, status, and
// the timestamps are excluded: status changes go through the workflow
// coordinator, VIN is immutable.
var mutableFields = map[string]bool{
	"make":        true,
	"model":       true,
	"year":        true,
	"mileage":     true,
	"color":       true,
	"priority":    true,
	"location":    true,
	"assignee_id": true,
}

// Update applies a partial update of mutable fields to a vehicle.
func Update(db *gorm.DB, vin string, updates map[string]interface{}) (*models.Vehicle, error) {
	vin = NormalizeVIN(vin)

	filtered := make(map[string]interface{}, len(updates))
	for k, val := range updates {
		if mutableFields[k] {
			filtered[k] = val
		}
	}
	if p, ok := filtered["priority"].(string); ok && !models.ValidPriority(p) {
		return nil, fmt.Errorf("vehicle: invalid priority %q", p)
	}

	if len(filtered) > 0 {
		res := db.Model(&models.Vehicle{}).Where("vin = ?", vin).Updates(filtered)
		if res.Error != nil {
			return nil, fmt.Errorf("vehicle: update %s: %w", vin, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, vin)
		}
	}
	return Get(db, vin)
}

// Delete hard-deletes a vehicle. Timeline events are left in place as the
// audit trail of record.
func Delete(db *gorm.DB, vin string) error {
	vin = NormalizeVIN(vin)
	res := db.Where("vin = ?", vin).Delete(&models.Vehicle{})
	if res.Error != nil {
		return fmt.Errorf("vehicle: delete %s: %w", vin, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, vin)
	}
	return nil
}

// Assign sets the assignee for a vehicle and records nothing else; callers
// wanting an audit entry append one through the timeline recorder.
func Assign(db *gorm.DB, vin string, userID uint) error {
	vin = NormalizeVIN(vin)
	res := db.Model(&models.Vehicle{}).Where("vin = ?", vin).Update("assignee_id", userID)
	if res.Error != nil {
		return fmt.Errorf("vehicle: assign %s: %w", vin, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, vin)
	}
	return nil
}

// Exists reports whether a VIN is registered.
func Exists(db *gorm.DB, vin string) (bool, error) {
	var count int64
	if err := db.Model(&models.Vehicle{}).Where("vin = ?", NormalizeVIN(vin)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("vehicle: check %s: %w", vin, err)
	}
	return count > 0, nil
}
