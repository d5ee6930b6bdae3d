package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/storage"
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassInput holds the editable class fields. A nil Capacity means unlimited.
type ClassInput struct {
	Name         string
	Description  string
	Weekday      string
	StartTime    string
	Duration     int
	Capacity     *int
	ImageURL     string
	InstructorID *primitive.ObjectID
	Active       bool
}

// ClassView is a class with its roster figures.
type ClassView struct {
	domain.GroupClass
	InstructorName string `json:"instructor"`
	Reserved       int64  `json:"inscritos"`
	// Available is nil for classes without a capacity limit.
	Available    *int64 `json:"cuposDisponibles"`
	ReservedByMe bool   `json:"reservada,omitempty"`
}

// ReservationView pairs a reservation with its class.
type ReservationView struct {
	domain.Reservation
	Class domain.GroupClass `json:"clase"`
}

// MemberClasses is the member's class page.
type MemberClasses struct {
	PlanName     string            `json:"plan"`
	CanReserve   bool              `json:"puedeReservar"`
	Classes      []ClassView       `json:"clases"`
	Reservations []ReservationView `json:"reservas"`
}

// ImageUpload tells the browser where to PUT a class image.
type ImageUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	ImageURL  string `json:"imagenUrl"`
}

type ClassService interface {
	Create(ctx context.Context, in ClassInput) (*domain.GroupClass, error)
	Update(ctx context.Context, id primitive.ObjectID, in ClassInput) (*domain.GroupClass, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error)
	List(ctx context.Context) ([]ClassView, error)
	ListActive(ctx context.Context) ([]ClassView, error)
	ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]domain.GroupClass, error)
	ToggleActive(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error)
	// AssignInstructor sets the class instructor; a nil instructorID unassigns it.
	AssignInstructor(ctx context.Context, classID primitive.ObjectID, instructorID *primitive.ObjectID) (*domain.GroupClass, error)
	// AvailableSlots is capacity minus active reservations, nil when unlimited.
	AvailableSlots(ctx context.Context, classID primitive.ObjectID) (*int64, error)

	Reserve(ctx context.Context, memberID, classID primitive.ObjectID) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, memberID, reservationID primitive.ObjectID) error
	ForMember(ctx context.Context, memberID primitive.ObjectID) (*MemberClasses, error)

	PrepareImageUpload(ctx context.Context, classID primitive.ObjectID, contentType string) (*ImageUpload, error)
}

var (
	seatReleaseAttempts = 3
	seatReleaseBackoff  = 100 * time.Millisecond
)

type classService struct {
	classRepo       repository.ClassRepository
	reservationRepo repository.ReservationRepository
	instructorRepo  repository.InstructorRepository
	memberRepo      repository.MemberRepository
	planRepo        repository.PlanRepository
	fileStorage     storage.FileStorage
}

// NewClassService wires the class service. fileStorage may be nil, in which
// case image uploads are refused.
func NewClassService(repos repository.Repositories, fileStorage storage.FileStorage) ClassService {
	return &classService{
		classRepo:       repos.Classes,
		reservationRepo: repos.Reservations,
		instructorRepo:  repos.Instructors,
		memberRepo:      repos.Members,
		planRepo:        repos.Plans,
		fileStorage:     fileStorage,
	}
}

func (in *ClassInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validation("El nombre de la clase es obligatorio")
	}
	if in.Duration < 0 {
		return validation("La duración no puede ser negativa")
	}
	if in.Capacity != nil && *in.Capacity <= 0 {
		return validation("La capacidad debe ser mayor a cero")
	}
	return nil
}

func (s *classService) Create(ctx context.Context, in ClassInput) (*domain.GroupClass, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, in.Name, primitive.NilObjectID); err != nil {
		return nil, err
	}
	if err := s.checkInstructor(ctx, in.InstructorID); err != nil {
		return nil, err
	}

	class := &domain.GroupClass{
		Name:         in.Name,
		Description:  in.Description,
		Weekday:      in.Weekday,
		StartTime:    in.StartTime,
		Duration:     in.Duration,
		Capacity:     in.Capacity,
		ImageURL:     in.ImageURL,
		Active:       in.Active,
		InstructorID: in.InstructorID,
	}
	if _, err := s.classRepo.Create(ctx, class); err != nil {
		return nil, s.writeError("class.create", err)
	}
	return class, nil
}

func (s *classService) Update(ctx context.Context, id primitive.ObjectID, in ClassInput) (*domain.GroupClass, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, in.Name, id); err != nil {
		return nil, err
	}
	if err := s.checkInstructor(ctx, in.InstructorID); err != nil {
		return nil, err
	}

	class.Name = in.Name
	class.Description = in.Description
	class.Weekday = in.Weekday
	class.StartTime = in.StartTime
	class.Duration = in.Duration
	class.Capacity = in.Capacity
	class.Active = in.Active
	class.InstructorID = in.InstructorID
	if in.ImageURL != "" && in.ImageURL != class.ImageURL {
		class.ImageURL = in.ImageURL
		class.ImageKey = ""
	}
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, s.writeError("class.update", err)
	}
	return class, nil
}

func (s *classService) checkName(ctx context.Context, name string, self primitive.ObjectID) error {
	existing, err := s.classRepo.GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return internalError("class.byName", err)
	case existing.ID != self:
		return ErrClassNameTaken
	}
	return nil
}

func (s *classService) checkInstructor(ctx context.Context, id *primitive.ObjectID) error {
	if id == nil {
		return nil
	}
	instructor, err := s.instructorRepo.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInstructorNotFound
		}
		return internalError("class.instructor", err)
	}
	if !instructor.Active {
		return validation("El instructor está inactivo")
	}
	return nil
}

func (s *classService) writeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrClassNameTaken
	case errors.Is(err, repository.ErrNotFound):
		return ErrClassNotFound
	}
	return internalError(op, err)
}

func (s *classService) Get(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, internalError("class.get", err)
	}
	return class, nil
}

func (s *classService) List(ctx context.Context) ([]ClassView, error) {
	classes, err := s.classRepo.List(ctx)
	if err != nil {
		return nil, internalError("class.list", err)
	}
	return s.views(ctx, classes)
}

func (s *classService) ListActive(ctx context.Context) ([]ClassView, error) {
	classes, err := s.classRepo.ListActive(ctx)
	if err != nil {
		return nil, internalError("class.listActive", err)
	}
	return s.views(ctx, classes)
}

func (s *classService) views(ctx context.Context, classes []domain.GroupClass) ([]ClassView, error) {
	counts, err := s.reservationRepo.ActiveCountsByClass(ctx)
	if err != nil {
		return nil, internalError("class.counts", err)
	}
	names, err := instructorNames(ctx, s.instructorRepo)
	if err != nil {
		return nil, err
	}

	out := make([]ClassView, 0, len(classes))
	for _, c := range classes {
		v := ClassView{GroupClass: c, InstructorName: "Sin asignar", Reserved: counts[c.ID]}
		if c.InstructorID != nil {
			if name, ok := names[*c.InstructorID]; ok {
				v.InstructorName = name
			}
		}
		v.Available = available(c.Capacity, v.Reserved)
		out = append(out, v)
	}
	return out, nil
}

func available(capacity *int, reserved int64) *int64 {
	if capacity == nil {
		return nil
	}
	left := int64(*capacity) - reserved
	if left < 0 {
		left = 0
	}
	return &left
}

func instructorNames(ctx context.Context, repo repository.InstructorRepository) (map[primitive.ObjectID]string, error) {
	list, err := repo.List(ctx)
	if err != nil {
		return nil, internalError("instructor.names", err)
	}
	names := make(map[primitive.ObjectID]string, len(list))
	for _, in := range list {
		names[in.ID] = in.Name
	}
	return names, nil
}

func (s *classService) ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]domain.GroupClass, error) {
	classes, err := s.classRepo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, internalError("class.byInstructor", err)
	}
	return classes, nil
}

func (s *classService) ToggleActive(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	class.Active = !class.Active
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, s.writeError("class.toggle", err)
	}
	return class, nil
}

func (s *classService) AssignInstructor(ctx context.Context, classID primitive.ObjectID, instructorID *primitive.ObjectID) (*domain.GroupClass, error) {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.checkInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	class.InstructorID = instructorID
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, s.writeError("class.assignInstructor", err)
	}
	return class, nil
}

func (s *classService) AvailableSlots(ctx context.Context, classID primitive.ObjectID) (*int64, error) {
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.Capacity == nil {
		return nil, nil
	}
	n, err := s.reservationRepo.CountActiveByClass(ctx, classID)
	if err != nil {
		return nil, internalError("class.slots", err)
	}
	return available(class.Capacity, n), nil
}

// Reserve books a seat for a Premium member. The seat counter is taken
// first with a conditional increment so two requests cannot both get the
// last seat; if the reservation insert then fails the seat is given back.
func (s *classService) Reserve(ctx context.Context, memberID, classID primitive.ObjectID) (*domain.Reservation, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, internalError("reserve.member", err)
	}
	plan, err := s.planRepo.GetByID(ctx, member.PlanID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("reserve.plan", err)
	}
	if !plan.IsPremium() {
		metrics.Reservations.WithLabelValues("forbidden").Inc()
		return nil, ErrPremiumRequired
	}

	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !class.Active {
		return nil, ErrClassUnavailable
	}

	if _, err := s.reservationRepo.FindActive(ctx, memberID, classID); err == nil {
		return nil, ErrAlreadyReserved
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("reserve.findActive", err)
	}

	if err := s.classRepo.ReserveSeat(ctx, classID); err != nil {
		if errors.Is(err, repository.ErrCapacityReached) {
			metrics.Reservations.WithLabelValues("full").Inc()
			return nil, ErrClassFull
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, internalError("reserve.seat", err)
	}

	reservation := &domain.Reservation{
		MemberID: memberID,
		ClassID:  classID,
		Status:   domain.ReservationActive,
	}
	if _, err := s.reservationRepo.Create(ctx, reservation); err != nil {
		if relErr := s.releaseSeat(ctx, classID); relErr != nil {
			log.Error().Err(relErr).Str("class", classID.Hex()).Msg("failed to release seat after reservation error")
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReserved
		}
		return nil, internalError("reserve.create", err)
	}

	metrics.Reservations.WithLabelValues("ok").Inc()
	return reservation, nil
}

// CancelReservation cancels one of the member's own active reservations.
func (s *classService) CancelReservation(ctx context.Context, memberID, reservationID primitive.ObjectID) error {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		return internalError("cancel.get", err)
	}
	if reservation.MemberID != memberID {
		return ErrReservationNotOwned
	}
	if !reservation.IsActive() {
		return ErrReservationNotActive
	}

	if err := s.reservationRepo.Cancel(ctx, reservationID); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return ErrReservationNotActive
		}
		return internalError("cancel.update", err)
	}
	if err := s.releaseSeat(ctx, reservation.ClassID); err != nil {
		log.Error().Err(err).Str("class", reservation.ClassID.Hex()).Msg("failed to release seat after cancel")
	}
	metrics.Reservations.WithLabelValues("cancelled").Inc()
	return nil
}

// releaseSeat gives a seat back, retrying with a growing pause. It ignores
// the caller's cancellation: the reservation is already gone, and a counter
// left one too high would keep the seat blocked.
func (s *classService) releaseSeat(ctx context.Context, classID primitive.ObjectID) error {
	ctx = context.WithoutCancel(ctx)
	var err error
	for attempt := 1; attempt <= seatReleaseAttempts; attempt++ {
		if err = s.classRepo.ReleaseSeat(ctx, classID); err == nil {
			return nil
		}
		log.Warn().Err(err).Str("class", classID.Hex()).Int("attempt", attempt).Msg("seat release failed")
		if attempt < seatReleaseAttempts {
			time.Sleep(time.Duration(attempt) * seatReleaseBackoff)
		}
	}
	return err
}

func (s *classService) ForMember(ctx context.Context, memberID primitive.ObjectID) (*MemberClasses, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, internalError("memberClasses.member", err)
	}
	plan, err := s.planRepo.GetByID(ctx, member.PlanID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("memberClasses.plan", err)
	}

	classes, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservationRepo.ListActiveByMember(ctx, memberID)
	if err != nil {
		return nil, internalError("memberClasses.reservations", err)
	}

	byID := make(map[primitive.ObjectID]int, len(classes))
	for i := range classes {
		byID[classes[i].ID] = i
	}

	out := &MemberClasses{
		CanReserve:   plan.IsPremium(),
		Classes:      classes,
		Reservations: make([]ReservationView, 0, len(reservations)),
	}
	if plan != nil {
		out.PlanName = plan.Name
	}
	for _, r := range reservations {
		view := ReservationView{Reservation: r}
		if i, ok := byID[r.ClassID]; ok {
			out.Classes[i].ReservedByMe = true
			view.Class = out.Classes[i].GroupClass
		} else if c, err := s.classRepo.GetByID(ctx, r.ClassID); err == nil {
			view.Class = *c
		}
		out.Reservations = append(out.Reservations, view)
	}
	return out, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PrepareImageUpload reserves an object key for a new class image, points the
// class at it and returns a presigned PUT URL. The previous image is removed.
func (s *classService) PrepareImageUpload(ctx context.Context, classID primitive.ObjectID, contentType string) (*ImageUpload, error) {
	if s.fileStorage == nil {
		return nil, ErrUploadUnavailable
	}
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, validation("Formato de imagen no soportado")
	}
	class, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	key := path.Join("classes", classID.Hex(), uuid.NewString()+ext)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, internalError("class.presign", err)
	}

	oldKey := class.ImageKey
	class.ImageKey = key
	class.ImageURL = s.fileStorage.PublicURL(key)
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, s.writeError("class.image", err)
	}
	if oldKey != "" {
		if err := s.fileStorage.DeleteObject(ctx, oldKey); err != nil {
			log.Warn().Err(err).Str("key", oldKey).Msg("failed to delete previous class image")
		}
	}

	return &ImageUpload{UploadURL: uploadURL, ObjectKey: key, ImageURL: class.ImageURL}, nil
}
