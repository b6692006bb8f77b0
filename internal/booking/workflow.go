package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/homecyclehelp/booking-client/internal/auth"
	"github.com/homecyclehelp/booking-client/internal/backend"
	"github.com/homecyclehelp/booking-client/internal/geocode"
	"github.com/homecyclehelp/booking-client/internal/observability/metrics"
	"github.com/homecyclehelp/booking-client/pkg/logging"
)

// State is the workflow position. Illegal combinations (slots shown without a
// covered address, submission without a slot) are unrepresentable.
type State int

const (
	StateTypeAndAddressPending State = iota
	StateCheckingCoverage
	StateNotCovered
	StateFetchingSlots
	StateSlotsReady
	StateSlotSelected
	StateDetailsPending
	StateSubmitting
	StateSuccess
	StateSubmissionFailed
)

func (s State) String() string {
	switch s {
	case StateTypeAndAddressPending:
		return "type_and_address_pending"
	case StateCheckingCoverage:
		return "checking_coverage"
	case StateNotCovered:
		return "not_covered"
	case StateFetchingSlots:
		return "fetching_slots"
	case StateSlotsReady:
		return "slots_ready"
	case StateSlotSelected:
		return "slot_selected"
	case StateDetailsPending:
		return "details_pending"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateSubmissionFailed:
		return "submission_failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// User-facing status messages.
const (
	MsgChooseType     = "Veuillez d'abord choisir un type d'intervention."
	MsgEnterAddress   = "Veuillez saisir une adresse."
	MsgNotCovered     = "Nous ne couvrons pas cette adresse."
	MsgCoveredLoading = "Adresse couverte. Chargement des créneaux..."
	MsgSlotsAvailable = "Créneaux disponibles."
	MsgNoSlots        = "Aucun créneau disponible pour le moment."
	MsgCheckError     = "Erreur lors de la vérification."
	MsgSuccess        = "Demande envoyée avec succès."
)

var (
	// ErrTypeNotSelected guards the coverage check: an intervention type is required first.
	ErrTypeNotSelected = errors.New("no intervention type selected")

	// ErrAddressMissing guards the coverage check: the address query is empty.
	ErrAddressMissing = errors.New("address query is empty")

	// ErrUnknownType is returned when selecting a type id that was never loaded.
	ErrUnknownType = errors.New("unknown intervention type")

	// ErrUnknownSlot is returned when selecting a slot outside the current list.
	ErrUnknownSlot = errors.New("slot not in current availability")

	// ErrNoSlotSelected guards submission.
	ErrNoSlotSelected = errors.New("no slot selected")

	// ErrNotReady is returned when an operation does not apply to the current state.
	ErrNotReady = errors.New("operation not allowed in current state")

	// ErrSuperseded marks a response discarded because a newer user action
	// (address edit, type change) made it stale. Never user-facing.
	ErrSuperseded = errors.New("superseded by a newer action")
)

// AddressResolver resolves and autocompletes free-text addresses.
type AddressResolver interface {
	Resolve(ctx context.Context, query string) (geocode.Coordinate, error)
	Suggest(ctx context.Context, partial string) []geocode.Suggestion
}

// API is the slice of the backend client the workflow needs.
type API interface {
	GetInterventionTypes(ctx context.Context) ([]backend.InterventionType, error)
	CheckCoverage(ctx context.Context, latitude, longitude float64) (backend.CoverageResult, error)
	GetAvailableSlots(ctx context.Context, providerID, typeID int, token string) ([]backend.Slot, error)
	BookIntervention(ctx context.Context, slotID int, booking backend.BookingRequest, token string) error
}

// Config wires a workflow instance.
type Config struct {
	Resolver AddressResolver
	API      API
	Identity *auth.Identity
	Token    string
	Metrics  *metrics.BookingMetrics
	Logger   *logging.Logger
}

// Workflow owns all transient booking state and sequences the steps:
// type + address, coverage, slots, details, submission.
//
// All network returns are applied under the lock only when the generation
// they were derived from is still current; a superseding user action bumps
// the generation so late responses for an older address or type are dropped.
type Workflow struct {
	resolver AddressResolver
	api      API
	identity *auth.Identity
	token    string
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger

	mu          sync.Mutex
	gen         uint64
	state       State
	status      string
	types       []backend.InterventionType
	query       string
	suggestions []geocode.Suggestion
	providerID  int
	slots       []backend.Slot
	groups      []DayGroup
	draft       Draft
}

// NewWorkflow constructs a workflow for an authenticated user. A missing
// identity is refused up front; the caller redirects to login.
func NewWorkflow(cfg Config) (*Workflow, error) {
	if cfg.Identity == nil {
		return nil, auth.ErrUnauthenticated
	}
	if cfg.Resolver == nil || cfg.API == nil {
		return nil, errors.New("booking: resolver and api are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Workflow{
		resolver: cfg.Resolver,
		api:      cfg.API,
		identity: cfg.Identity,
		token:    cfg.Token,
		metrics:  cfg.Metrics,
		logger:   logger,
		state:    StateTypeAndAddressPending,
	}, nil
}

// Start loads the intervention types. Called once at workflow start; the
// list is immutable for the session.
func (w *Workflow) Start(ctx context.Context) error {
	types, err := w.api.GetInterventionTypes(ctx)
	if err != nil {
		return fmt.Errorf("load intervention types: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.types = types
	return nil
}

// Types returns the intervention types loaded by Start.
func (w *Workflow) Types() []backend.InterventionType {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]backend.InterventionType, len(w.types))
	copy(out, w.types)
	return out
}

// SelectType picks an intervention type. Changing the type supersedes any
// in-flight lookup and clears previously loaded slots.
func (w *Workflow) SelectType(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	found := false
	for _, t := range w.types {
		if t.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: id %d", ErrUnknownType, id)
	}

	w.gen++
	w.draft.InterventionTypeID = id
	w.clearSlotsLocked()
	w.state = StateTypeAndAddressPending
	return nil
}

// UpdateQuery records a keystroke in the address field and returns
// autocomplete suggestions. Editing the address supersedes any in-flight
// lookup and clears previously loaded slots; a stale suggestion response
// is discarded instead of overwriting a newer one.
func (w *Workflow) UpdateQuery(ctx context.Context, text string) []geocode.Suggestion {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.query = text
	w.clearSlotsLocked()
	if w.state != StateTypeAndAddressPending {
		w.state = StateTypeAndAddressPending
	}
	w.mu.Unlock()

	// Suggest swallows provider errors and short queries by itself.
	suggestions := w.resolver.Suggest(ctx, text)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		w.metrics.ObserveStaleDropped("suggestion")
		return nil
	}
	w.suggestions = suggestions
	if len([]rune(strings.TrimSpace(text))) < geocode.MinQueryLen {
		w.metrics.ObserveSuggestion("short_circuit")
	} else {
		w.metrics.ObserveSuggestion("lookup")
	}
	return suggestions
}

// Suggestions returns the current autocomplete candidates.
func (w *Workflow) Suggestions() []geocode.Suggestion {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]geocode.Suggestion, len(w.suggestions))
	copy(out, w.suggestions)
	return out
}

// SelectSuggestion adopts a candidate: the address field takes its label and
// the suggestion list is cleared. Like any address edit it supersedes
// in-flight lookups and drops slots loaded for the previous address.
func (w *Workflow) SelectSuggestion(s geocode.Suggestion) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	w.query = s.Label
	w.suggestions = nil
	w.clearSlotsLocked()
	w.state = StateTypeAndAddressPending
	w.status = ""
}

// Query returns the current address field content.
func (w *Workflow) Query() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.query
}

// CheckAvailability resolves the address, checks coverage and, when covered,
// fetches and groups the provider's open slots. "Not covered" is a business
// answer, not an error: the caller inspects State afterwards.
func (w *Workflow) CheckAvailability(ctx context.Context) error {
	w.mu.Lock()
	if w.draft.InterventionTypeID == 0 {
		w.status = MsgChooseType
		w.mu.Unlock()
		return ErrTypeNotSelected
	}
	if strings.TrimSpace(w.query) == "" {
		w.status = MsgEnterAddress
		w.mu.Unlock()
		return ErrAddressMissing
	}
	gen := w.gen
	typeID := w.draft.InterventionTypeID
	query := w.query
	w.clearSlotsLocked()
	w.state = StateCheckingCoverage
	w.status = ""
	w.mu.Unlock()

	coord, err := w.resolver.Resolve(ctx, query)
	if err != nil {
		return w.failCheck(gen, "coverage", fmt.Errorf("resolve address: %w", err))
	}

	coverage, err := w.api.CheckCoverage(ctx, coord.Latitude, coord.Longitude)
	if err != nil {
		return w.failCheck(gen, "coverage", err)
	}

	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		w.metrics.ObserveStaleDropped("coverage")
		return ErrSuperseded
	}
	if !coverage.Covered {
		w.state = StateNotCovered
		w.status = MsgNotCovered
		w.mu.Unlock()
		w.metrics.ObserveCoverage("not_covered")
		return nil
	}
	w.providerID = coverage.ProviderID
	w.draft.Address = coord.Label
	w.state = StateFetchingSlots
	w.status = MsgCoveredLoading
	w.mu.Unlock()
	w.metrics.ObserveCoverage("covered")

	slots, err := w.api.GetAvailableSlots(ctx, coverage.ProviderID, typeID, w.token)
	if err != nil {
		return w.failCheck(gen, "slots", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		w.metrics.ObserveStaleDropped("slots")
		return ErrSuperseded
	}
	w.slots = slots
	w.groups = GroupSlotsByDay(slots)
	w.state = StateSlotsReady
	if len(slots) == 0 {
		w.status = MsgNoSlots
	} else {
		w.status = MsgSlotsAvailable
	}
	w.metrics.ObserveSlotFetch("ok")
	return nil
}

// failCheck applies a coverage/slot failure unless a newer action already
// superseded the request.
func (w *Workflow) failCheck(gen uint64, kind string, err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		w.metrics.ObserveStaleDropped(kind)
		return ErrSuperseded
	}
	w.state = StateTypeAndAddressPending
	w.status = MsgCheckError
	switch kind {
	case "coverage":
		w.metrics.ObserveCoverage("error")
	case "slots":
		w.metrics.ObserveSlotFetch("error")
	}
	w.logger.Warn("availability check failed", "step", kind, "error", err)
	return err
}

// SlotGroups returns the current slots grouped by day.
func (w *Workflow) SlotGroups() []DayGroup {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]DayGroup, len(w.groups))
	copy(out, w.groups)
	return out
}

// SelectSlot picks a slot from the current availability.
func (w *Workflow) SelectSlot(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateSlotsReady, StateSlotSelected, StateDetailsPending, StateSubmissionFailed:
	default:
		return fmt.Errorf("%w: %s", ErrNotReady, w.state)
	}

	for _, s := range w.slots {
		if s.ID == id {
			w.draft.SlotID = id
			w.state = StateSlotSelected
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrUnknownSlot, id)
}

// SetBikeDetails fills the details form. Allowed once a slot is selected.
func (w *Workflow) SetBikeDetails(brand, model string, electric bool, comment string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateSlotSelected, StateDetailsPending, StateSubmissionFailed:
	default:
		return fmt.Errorf("%w: %s", ErrNotReady, w.state)
	}

	w.draft.BikeBrand = brand
	w.draft.BikeModel = model
	w.draft.IsElectric = electric
	w.draft.Comment = comment
	w.state = StateDetailsPending
	return nil
}

// AttachPhoto validates and attaches an optional photo. A rejected file never
// reaches the draft; a previously accepted photo stays in place.
func (w *Workflow) AttachPhoto(photo backend.Photo) error {
	if err := ValidatePhoto(photo); err != nil {
		var uploadErr *UploadError
		if errors.As(err, &uploadErr) {
			w.metrics.ObserveUploadReject(string(uploadErr.Reason))
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Photo = &photo
	return nil
}

// Submit posts the reservation. On success the draft is consumed; on failure
// the workflow enters StateSubmissionFailed with everything intact so the
// user can retry, edit the details, or pick another slot.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.draft.SlotID == 0 {
		w.mu.Unlock()
		return ErrNoSlotSelected
	}
	switch w.state {
	case StateSlotSelected, StateDetailsPending, StateSubmissionFailed:
	default:
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotReady, w.state)
	}
	w.state = StateSubmitting
	slotID := w.draft.SlotID
	req := backend.BookingRequest{
		ClientID:   w.identity.ID,
		BikeBrand:  w.draft.BikeBrand,
		BikeModel:  w.draft.BikeModel,
		IsElectric: w.draft.IsElectric,
		Comment:    w.draft.Comment,
		Address:    w.draft.Address,
		Photo:      w.draft.Photo,
	}
	w.mu.Unlock()

	err := w.api.BookIntervention(ctx, slotID, req, w.token)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateSubmissionFailed
		var bookErr *backend.BookingError
		if errors.As(err, &bookErr) && bookErr.Message != "" {
			w.status = "Erreur : " + bookErr.Message
		} else {
			w.status = MsgCheckError
		}
		w.metrics.ObserveSubmission("failed")
		w.logger.Warn("booking submission failed", "slot_id", slotID, "error", err)
		return err
	}

	w.state = StateSuccess
	w.status = MsgSuccess
	w.draft = Draft{}
	w.metrics.ObserveSubmission("ok")
	w.logger.Info("booking submitted", "slot_id", slotID)
	return nil
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// StatusMessage returns the current user-facing status line.
func (w *Workflow) StatusMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Draft returns a copy of the in-progress booking.
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// clearSlotsLocked drops slots and selection so stale availability for a
// different address or type can never be shown. Caller holds w.mu.
func (w *Workflow) clearSlotsLocked() {
	w.slots = nil
	w.groups = nil
	w.providerID = 0
	w.draft.SlotID = 0
}
