// Package faceauth implements face-based enrollment and login on top of
// the detector, the imaging primitives and the user registry.
//
// A user moves through three states: no record, pending (face stored but
// unnamed) and confirmed. Pending users are invisible to duplicate checks
// during enrollment but can still log in, so an interrupted registration
// can be resumed.
package faceauth

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jarvislab/jarvis/internal/detector"
	"github.com/jarvislab/jarvis/internal/imaging"
	"github.com/jarvislab/jarvis/internal/registry"
)

// Geometry limits used by Validate. A face should look roughly straight at
// the camera and fill a reasonable share of the frame.
const (
	minAspectRatio = 0.5
	maxAspectRatio = 1.5
	minAreaFrac    = 0.05
	maxAreaFrac    = 0.8
)

// Service orchestrates locator, normalizer, scorer and registry.
type Service struct {
	locator   detector.Locator
	registry  *registry.Registry
	threshold float64
	blur      *float64 // Laplacian variance cutoff; nil disables the check

	// mu serializes every load-check-mutate-save sequence. Two concurrent
	// enrollments racing the duplicate check would otherwise both pass it
	// and clobber the registry.
	mu sync.Mutex
}

// New creates the face authentication service. threshold is the minimum
// similarity score to declare a match; blurThreshold enables the optional
// sharpness check when non-nil.
func New(locator detector.Locator, reg *registry.Registry, threshold float64, blurThreshold *float64) *Service {
	return &Service{
		locator:   locator,
		registry:  reg,
		threshold: threshold,
		blur:      blurThreshold,
	}
}

// Credentials identify an authenticated or enrolled user. The user_id
// doubles as the bearer token for subsequent requests.
type Credentials struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

// ValidationResult is the soft, side-effect-free answer to "is this image
// usable for enrollment".
type ValidationResult struct {
	Valid             bool          `json:"valid"`
	Message           string        `json:"message"`
	FaceInfo          *detector.Box `json:"face_info,omitempty"`
	AlreadyRegistered bool          `json:"already_registered,omitempty"`
	ExistingName      string        `json:"existing_name,omitempty"`
}

// AnalysisResult reports detected faces without any matching.
type AnalysisResult struct {
	FaceCount int            `json:"face_count"`
	Faces     []detector.Box `json:"faces"`
}

func credentialsFor(rec registry.UserRecord) *Credentials {
	return &Credentials{UserID: rec.UserID, Name: rec.Name, Token: rec.UserID}
}

// ensureFace decodes the image and requires exactly one detected face.
// Returns the grayscale face crop. Zero or multiple faces are hard
// failures here, unlike the advisory Validate path.
func (s *Service) ensureFace(ctx context.Context, imageData []byte) (*image.Gray, error) {
	img, err := imaging.Decode(imageData)
	if err != nil {
		return nil, validationErrorf("Invalid image")
	}
	boxes, err := s.locator.Detect(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(boxes) == 0 {
		return nil, validationErrorf("No face detected. Please ensure your face is visible.")
	}
	if len(boxes) > 1 {
		return nil, validationErrorf("Multiple faces detected. Please ensure only one face is visible.")
	}
	gray := imaging.Grayscale(img)
	return imaging.Crop(gray, boxes[0].Rect()), nil
}

// match holds the best-scoring candidate for a probe sample.
type match struct {
	record registry.UserRecord
	score  float64
}

// bestMatch scores the probe against every eligible user and returns the
// first-seen record achieving the maximum score, or nil when the registry
// has no scorable candidates. Users are visited in enrollment order and
// only a strictly greater score displaces the current best, which is what
// makes the tie-break deterministic.
func (s *Service) bestMatch(users []registry.UserRecord, probe *image.Gray, includePending bool) (*match, error) {
	var best *match
	for _, u := range users {
		if !includePending && !u.Confirmed {
			continue
		}
		data, ok, err := s.registry.LoadSample(u.UserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		sample, err := imaging.Decode(data)
		if err != nil {
			// A broken blob should not block everyone else from matching.
			log.Printf("skipping unreadable face sample for user %s: %v", u.UserID, err)
			continue
		}
		score := imaging.Score(probe, imaging.Normalize(sample))
		if best == nil || score > best.score {
			best = &match{record: u, score: score}
		}
	}
	return best, nil
}

// Validate checks whether an image is suitable for enrollment. It is pure
// and advisory: detection problems come back as a structured rejection,
// never as an error, and no state is touched. On success it additionally
// reports whether the face already matches a confirmed user.
func (s *Service) Validate(ctx context.Context, imageData []byte) (*ValidationResult, error) {
	img, err := imaging.Decode(imageData)
	if err != nil {
		return &ValidationResult{Valid: false, Message: "Invalid image"}, nil
	}

	boxes, err := s.locator.Detect(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if len(boxes) == 0 {
		return &ValidationResult{Valid: false, Message: "No face detected. Position your face in frame."}, nil
	}
	if len(boxes) > 1 {
		return &ValidationResult{Valid: false, Message: "Multiple faces. Ensure only you are visible."}, nil
	}

	box := boxes[0]
	if ar := box.AspectRatio(); ar < minAspectRatio || ar > maxAspectRatio {
		return &ValidationResult{Valid: false, Message: "Face angle not ideal. Look straight at camera."}, nil
	}

	bounds := img.Bounds()
	imgArea := bounds.Dx() * bounds.Dy()
	if imgArea > 0 {
		frac := float64(box.Area()) / float64(imgArea)
		if frac < minAreaFrac {
			return &ValidationResult{Valid: false, Message: "Move closer. Face is too small."}, nil
		}
		if frac > maxAreaFrac {
			return &ValidationResult{Valid: false, Message: "Move back slightly. Face too close."}, nil
		}
	}

	gray := imaging.Grayscale(img)
	crop := imaging.Crop(gray, box.Rect())

	if s.blur != nil && imaging.LaplacianVariance(crop) < *s.blur {
		return &ValidationResult{Valid: false, Message: "Image too blurry. Hold steady or improve lighting."}, nil
	}

	result := &ValidationResult{Valid: true, Message: "Face verified", FaceInfo: &box}

	// Best effort: warn the UI when this face is already enrolled. A
	// registry read failure here must not fail an otherwise valid image.
	users, err := s.registry.Load()
	if err != nil {
		log.Printf("skipping duplicate check during validation: %v", err)
		return result, nil
	}
	best, err := s.bestMatch(users, imaging.Normalize(crop), false)
	if err != nil {
		log.Printf("skipping duplicate check during validation: %v", err)
		return result, nil
	}
	if best != nil && best.score >= s.threshold {
		result.AlreadyRegistered = true
		result.ExistingName = best.record.Name
	}
	return result, nil
}

// Analyze reports face locations without matching. A failed decode counts
// as zero faces.
func (s *Service) Analyze(ctx context.Context, imageData []byte) (*AnalysisResult, error) {
	if _, err := imaging.Decode(imageData); err != nil {
		return &AnalysisResult{FaceCount: 0, Faces: []detector.Box{}}, nil
	}
	boxes, err := s.locator.Detect(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}
	if boxes == nil {
		boxes = []detector.Box{}
	}
	return &AnalysisResult{FaceCount: len(boxes), Faces: boxes}, nil
}

// enroll stores the face crop and inserts a new record. Callers must hold
// s.mu. If the registry insert fails, the just-written sample is removed
// so no orphaned blob is left behind.
func (s *Service) enroll(crop *image.Gray, name string, confirmed bool) (*Credentials, error) {
	userID := uuid.NewString()
	if name == "" {
		name = "User_" + userID[:8]
	}

	sample, err := imaging.EncodePNG(crop)
	if err != nil {
		return nil, err
	}
	if err := s.registry.SaveSample(userID, sample); err != nil {
		return nil, err
	}

	rec := registry.UserRecord{
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Confirmed: confirmed,
	}
	if err := s.registry.Insert(rec); err != nil {
		if cleanupErr := s.registry.RemoveSample(userID); cleanupErr != nil {
			log.Printf("failed to clean up face sample for user %s: %v", userID, cleanupErr)
		}
		return nil, err
	}
	return credentialsFor(rec), nil
}

// checkDuplicate rejects enrollment when the probe matches a confirmed
// user. Pending users are excluded - an abandoned half-registration must
// not lock anyone out.
func (s *Service) checkDuplicate(probe *image.Gray) error {
	users, err := s.registry.Load()
	if err != nil {
		return err
	}
	best, err := s.bestMatch(users, probe, false)
	if err != nil {
		return err
	}
	if best != nil && best.score >= s.threshold {
		return validationErrorf("Face already registered as '%s'. Please login instead.", best.record.Name)
	}
	return nil
}

// RegisterFace stores a face and creates a pending record with a
// placeholder name. The returned user_id is the session token for the
// follow-up RegisterComplete call.
func (s *Service) RegisterFace(ctx context.Context, imageData []byte) (*Credentials, error) {
	crop, err := s.ensureFace(ctx, imageData)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDuplicate(imaging.Normalize(crop)); err != nil {
		return nil, err
	}
	return s.enroll(crop, "", false)
}

// RegisterComplete commits the display name for a pending registration
// and flips the record to confirmed. A blank name keeps the placeholder.
// Calling it again renames the user; there is no separate guard.
func (s *Service) RegisterComplete(ctx context.Context, userID, name string) (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(name)
	rec, err := s.registry.Update(userID, func(u *registry.UserRecord) {
		if trimmed != "" {
			u.Name = trimmed
		}
		u.Confirmed = true
	})
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, validationErrorf("Invalid session. Please register again.")
		}
		return nil, err
	}
	return credentialsFor(rec), nil
}

// Register is the one-shot flow: face plus optional name, inserted
// directly in the confirmed state.
func (s *Service) Register(ctx context.Context, imageData []byte, name string) (*Credentials, error) {
	crop, err := s.ensureFace(ctx, imageData)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDuplicate(imaging.Normalize(crop)); err != nil {
		return nil, err
	}
	return s.enroll(crop, strings.TrimSpace(name), true)
}

// Login matches a face against every enrolled user, pending ones
// included, so a user who never finished naming themselves can still get
// back in.
func (s *Service) Login(ctx context.Context, imageData []byte) (*Credentials, error) {
	crop, err := s.ensureFace(ctx, imageData)
	if err != nil {
		return nil, err
	}

	users, err := s.registry.Load()
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, validationErrorf("No users registered. Please register first.")
	}

	best, err := s.bestMatch(users, imaging.Normalize(crop), true)
	if err != nil {
		return nil, err
	}
	if best == nil || best.score < s.threshold {
		return nil, validationErrorf("Face not recognized. Please try again or register.")
	}
	return credentialsFor(best.record), nil
}
