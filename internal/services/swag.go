package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventflow/internal/models"
)

// ErrInvalidToken is returned when a claim token fails its integrity or
// expiry check. Business-state problems (unknown ticket, not checked in,
// already claimed) are deliberately not this error.
var ErrInvalidToken = errors.New("invalid or expired claim token")

// TokenData is the payload recovered from a valid claim token.
type TokenData struct {
	TicketID string
	Email    string
	IssuedAt time.Time
}

type claimTokenClaims struct {
	TicketID string `json:"tid"`
	Email    string `json:"eml"`
	jwt.RegisteredClaims
}

// qrTokenPattern matches the trailing path segment of a scanned claim URL.
var qrTokenPattern = regexp.MustCompile(`swag/([^/\s]+)`)

// ExtractToken pulls the token out of scanned QR content. Scanners hand
// back the full claim URL; a bare token passes through unchanged.
func ExtractToken(decoded string) string {
	if m := qrTokenPattern.FindStringSubmatch(decoded); m != nil {
		return m[1]
	}
	return decoded
}

// SwagService derives and validates swag-claim tokens and applies the claim
// transition. Tokens are self-contained credentials: nothing is persisted at
// issuance, and a claimed ticket invalidates every outstanding token for it.
type SwagService struct {
	attendees  AttendeeStore
	signingKey []byte
	ttl        time.Duration
	exempt     map[string]bool
	notifier   Notifier

	now func() time.Time
}

// NewSwagService creates a new swag service. exemptTypes lists ticket types
// without swag entitlement (day passes and the like).
func NewSwagService(attendees AttendeeStore, signingKey []byte, ttl time.Duration, exemptTypes []string, notifier Notifier) *SwagService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	exempt := make(map[string]bool, len(exemptTypes))
	for _, t := range exemptTypes {
		exempt[t] = true
	}

	return &SwagService{
		attendees:  attendees,
		signingKey: signingKey,
		ttl:        ttl,
		exempt:     exempt,
		notifier:   notifier,
		now:        time.Now,
	}
}

// IssueClaimToken mints a signed token binding the ticket id to the
// attendee's normalized email. The token is URL-safe and carries its own
// expiry; no server-side ledger of outstanding tokens exists.
func (s *SwagService) IssueClaimToken(ticketID, email string) (string, error) {
	now := s.now()
	claims := claimTokenClaims{
		TicketID: ticketID,
		Email:    models.NormalizeEmail(email),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign claim token: %w", err)
	}

	return token, nil
}

// VerifyToken checks the token's signature and expiry and recovers its
// payload. It does not consult the ticket record; whether the ticket exists
// or is checked in is the claim flow's concern.
func (s *SwagService) VerifyToken(token string) (*TokenData, error) {
	parsed, err := jwt.ParseWithClaims(token, &claimTokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*claimTokenClaims)
	if !ok || claims.TicketID == "" {
		return nil, ErrInvalidToken
	}

	data := &TokenData{
		TicketID: claims.TicketID,
		Email:    claims.Email,
	}
	if claims.IssuedAt != nil {
		data.IssuedAt = claims.IssuedAt.Time
	}

	return data, nil
}

// TokenFor mints a claim token for the ticket if it still qualifies for
// swag: not already claimed and not an exempt ticket type.
func (s *SwagService) TokenFor(a *models.Attendee) (string, bool) {
	if a.SwagReceived || s.exempt[a.TicketType] {
		return "", false
	}

	token, err := s.IssueClaimToken(a.ID, a.Email)
	if err != nil {
		log.Printf("Failed to issue claim token for ticket %s: %v", a.ID, err)
		return "", false
	}

	return token, true
}

// ClaimSwag validates the token and applies the one-shot claim transition.
// The attendee link and the staff scanner both land here; there is exactly
// one claim code path.
func (s *SwagService) ClaimSwag(token string) (*models.ClaimResult, error) {
	data, err := s.VerifyToken(token)
	if err != nil {
		return &models.ClaimResult{Status: models.ClaimInvalidToken}, nil
	}

	attendee, err := s.attendees.GetByID(data.TicketID)
	if err != nil {
		if errors.Is(err, models.ErrAttendeeNotFound) {
			return &models.ClaimResult{Status: models.ClaimTicketNotFound}, nil
		}
		return nil, err
	}

	if !attendee.CheckedIn {
		return &models.ClaimResult{Status: models.ClaimNotCheckedIn, Attendee: attendee}, nil
	}

	if attendee.SwagReceived {
		// Re-presenting after a claim reports "already claimed", never
		// "invalid token".
		return &models.ClaimResult{Status: models.ClaimAlreadyDone, Attendee: attendee}, nil
	}

	claimed, err := s.attendees.ClaimSwag(attendee.ID)
	if err != nil {
		return nil, err
	}

	if !claimed {
		// The conditional write affected nothing: a racing claim (or a
		// staff revert) got there between our read and the write.
		// Re-read to report the state that actually won.
		attendee, err = s.attendees.GetByID(attendee.ID)
		if err != nil {
			return nil, err
		}
		if attendee.SwagReceived {
			return &models.ClaimResult{Status: models.ClaimAlreadyDone, Attendee: attendee}, nil
		}
		return &models.ClaimResult{Status: models.ClaimNotCheckedIn, Attendee: attendee}, nil
	}

	attendee.SwagReceived = true

	ev := NewChangeEvent(ChangeSwagClaim, attendee.ID, models.NormalizeEmail(attendee.Email), attendee.FullName(), []string{attendee.TicketType})
	if err := s.notifier.Publish(ev); err != nil {
		log.Printf("Failed to publish swag-claim event for %s: %v", attendee.ID, err)
	}

	return &models.ClaimResult{Status: models.ClaimCompleted, Attendee: attendee}, nil
}

// SetSwagReceived is the staff error-correction toggle for the swag flag.
func (s *SwagService) SetSwagReceived(id string, received bool) (*models.Attendee, error) {
	if err := s.attendees.SetSwagReceived(id, received); err != nil {
		return nil, err
	}

	attendee, err := s.attendees.GetByID(id)
	if err != nil {
		return nil, err
	}

	ev := NewChangeEvent(ChangeEdit, attendee.ID, models.NormalizeEmail(attendee.Email), attendee.FullName(), nil)
	if err := s.notifier.Publish(ev); err != nil {
		log.Printf("Failed to publish swag toggle event for %s: %v", id, err)
	}

	return attendee, nil
}
