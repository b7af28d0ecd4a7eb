package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strings"

	"events-app/internal/events/upload"
	"events-app/internal/logger"
	"events-app/internal/models"
)

// ErrNotFound signals that no event row matches the requested id.
var ErrNotFound = errors.New("event not found")

// ValidationError marks client-supplied input the service refused.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationError(msg string) error { return &ValidationError{msg: msg} }

// IsValidation reports whether err originates from input validation.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Store is the record store contract shared by the ORM and raw-SQL variants.
type Store interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
	ListEvents(ctx context.Context, params ListParams) ([]models.Event, int, error)
}

// Uploads is the slice of the upload sidecar the service drives.
type Uploads interface {
	Stage(file multipart.File, header *multipart.FileHeader) (string, error)
	Confirm(urlPath string)
	Discard(urlPath string)
	Remove(urlPath string)
}

// ListParams carries a fully resolved listing request: sort column already
// mapped through the allow-list, order normalized, offset computed.
type ListParams struct {
	Offset     int
	Limit      int
	Search     string
	SortColumn string
	SortOrder  string
}

// EventInput is the raw form payload of a create or update.
type EventInput struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
}

// ListQuery is the unvalidated query-string view of a list request.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

type ListResult struct {
	Data         []models.Event
	TotalPages   int
	TotalRecords int
}

// allowedSortColumns maps API sort keys to table columns. Anything outside the
// allow-list falls back to id.
var allowedSortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"startDate": "start_date",
	"endDate":   "end_date",
}

type EventService struct {
	Store   Store
	Uploads Uploads
	Logger  *logger.Logger
}

func NewEventService(store Store, uploads Uploads, log *logger.Logger) *EventService {
	return &EventService{Store: store, Uploads: uploads, Logger: log}
}

type validatedInput struct {
	name        string
	description string
	startDate   models.DateOnly
	endDate     models.DateOnly
}

func validate(in EventInput) (validatedInput, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" || description == "" || strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.EndDate) == "" {
		return validatedInput{}, validationError("All fields are required")
	}

	startDate, err := models.ParseDate(in.StartDate)
	if err != nil {
		return validatedInput{}, validationError("startDate is not a valid date")
	}
	endDate, err := models.ParseDate(in.EndDate)
	if err != nil {
		return validatedInput{}, validationError("endDate is not a valid date")
	}
	if endDate.Before(startDate.Time) {
		return validatedInput{}, validationError("endDate must not be before startDate")
	}

	return validatedInput{name: name, description: description, startDate: startDate, endDate: endDate}, nil
}

// stageImage pushes the optional upload into the sidecar, translating its
// policy errors into validation errors.
func (s *EventService) stageImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	urlPath, err := s.Uploads.Stage(file, header)
	if err != nil {
		if errors.Is(err, upload.ErrNotImage) || errors.Is(err, upload.ErrTooLarge) {
			return "", validationError(err.Error())
		}
		return "", fmt.Errorf("stage image: %w", err)
	}
	return urlPath, nil
}

// Create validates the payload, stages the optional image, inserts the row and
// confirms the file. The staged file is discarded when the insert fails.
func (s *EventService) Create(ctx context.Context, in EventInput, file multipart.File, header *multipart.FileHeader) (*models.Event, error) {
	valid, err := validate(in)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	if file != nil {
		urlPath, err := s.stageImage(file, header)
		if err != nil {
			return nil, err
		}
		imageURL = &urlPath
	}

	event := &models.Event{
		Name:        valid.name,
		Description: valid.description,
		StartDate:   valid.startDate,
		EndDate:     valid.endDate,
		ImageURL:    imageURL,
	}

	if err := s.Store.CreateEvent(ctx, event); err != nil {
		if imageURL != nil {
			s.Uploads.Discard(*imageURL)
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	if imageURL != nil {
		s.Uploads.Confirm(*imageURL)
	}

	s.Logger.Info("EVENTS", fmt.Sprintf("Created event %d (%s)", event.ID, event.Name))
	return event, nil
}

// List resolves pagination, search and sorting, then returns one page plus the
// total match count and the derived page count.
func (s *EventService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 5
	}

	column, ok := allowedSortColumns[q.SortBy]
	if !ok {
		column = "id"
	}
	order := strings.ToUpper(q.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	rows, total, err := s.Store.ListEvents(ctx, ListParams{
		Offset:     (page - 1) * limit,
		Limit:      limit,
		Search:     q.Search,
		SortColumn: column,
		SortOrder:  order,
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if rows == nil {
		rows = []models.Event{}
	}

	return &ListResult{
		Data:         rows,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
		TotalRecords: total,
	}, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.Store.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return event, nil
}

// Update overwrites all four text/date fields. A replacement image is staged
// before the row write and confirmed after it; only then is the previous file
// removed. Without a replacement the existing imageUrl is preserved.
func (s *EventService) Update(ctx context.Context, id int64, in EventInput, file multipart.File, header *multipart.FileHeader) (*models.Event, error) {
	valid, err := validate(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:          id,
		Name:        valid.name,
		Description: valid.description,
		StartDate:   valid.startDate,
		EndDate:     valid.endDate,
		ImageURL:    existing.ImageURL,
		CreatedAt:   existing.CreatedAt,
	}

	var staged string
	if file != nil {
		staged, err = s.stageImage(file, header)
		if err != nil {
			return nil, err
		}
		event.ImageURL = &staged
	}

	if err := s.Store.UpdateEvent(ctx, event); err != nil {
		if staged != "" {
			s.Uploads.Discard(staged)
		}
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}

	if staged != "" {
		s.Uploads.Confirm(staged)
		if existing.ImageURL != nil {
			s.Uploads.Remove(*existing.ImageURL)
		}
	}

	s.Logger.Info("EVENTS", fmt.Sprintf("Updated event %d (%s)", event.ID, event.Name))
	return event, nil
}

// Delete removes the row first and the image file second, so a file-system
// failure can never leave a row pointing at nothing.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Store.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if existing.ImageURL != nil {
		s.Uploads.Remove(*existing.ImageURL)
	}

	s.Logger.Info("EVENTS", fmt.Sprintf("Deleted event %d", id))
	return nil
}
