// Package ens manages an off-chain registry of subnames under the service's
// parent ENS domain, each carrying a "did" text record.
package ens

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"omnirep/internal/domain"
	"omnirep/internal/ethereum"
	"omnirep/internal/observability"
	"omnirep/internal/storage"
)

const (
	// DefaultParentDomain is the parent name subnames are issued under.
	DefaultParentDomain = "omnirep.eth"
	// DefaultYears is the registration period when none is given.
	DefaultYears = 2

	minLabelLen = 3
	maxLabelLen = 63
	yearSeconds = 365 * 24 * 60 * 60
)

var (
	ErrInvalidLabel = errors.New("invalid subname label")
	ErrInvalidOwner = errors.New("invalid owner address")
	ErrTaken        = errors.New("subname already registered")
	ErrNoDID        = errors.New("subname has no did record")
)

var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateLabel lowercases label and checks it is 3-63 characters of
// [a-z0-9-] without a leading or trailing hyphen.
func ValidateLabel(label string) (string, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if len(label) < minLabelLen || len(label) > maxLabelLen {
		return "", fmt.Errorf("%w: %q must be %d-%d characters", ErrInvalidLabel, label, minLabelLen, maxLabelLen)
	}
	if !labelPattern.MatchString(label) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return label, nil
}

// RegistrarOptions configures a Registrar.
type RegistrarOptions struct {
	Store  storage.SubnameStore
	Parent string
	Logger *log.Logger
	Now    func() time.Time
}

// Registrar registers and resolves subnames.
type Registrar struct {
	store  storage.SubnameStore
	parent string
	logger *log.Logger
	now    func() time.Time
}

// NewRegistrar creates a new Registrar.
func NewRegistrar(opts RegistrarOptions) *Registrar {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	parent := strings.ToLower(strings.TrimSpace(opts.Parent))
	if parent == "" {
		parent = DefaultParentDomain
	}
	return &Registrar{
		store:  opts.Store,
		parent: parent,
		logger: logger,
		now:    now,
	}
}

// Parent returns the parent domain.
func (r *Registrar) Parent() string {
	return r.parent
}

// FullName returns label under the parent domain.
func (r *Registrar) FullName(label string) string {
	return label + "." + r.parent
}

// Available reports whether label can be registered.
func (r *Registrar) Available(ctx context.Context, label string) (bool, error) {
	label, err := ValidateLabel(label)
	if err != nil {
		return false, err
	}

	_, err = r.store.GetByName(ctx, r.FullName(label))
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check subname %s: %w", label, err)
	}
	return false, nil
}

// Register records label for owner with a did text record.
// years <= 0 uses DefaultYears.
func (r *Registrar) Register(ctx context.Context, label, owner, did string, years int) (*domain.Subname, error) {
	label, err := ValidateLabel(label)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOwner, owner)
	}
	if years <= 0 {
		years = DefaultYears
	}

	now := r.now()
	name := r.FullName(label)
	sub := &domain.Subname{
		Name:      name,
		Label:     label,
		Node:      ethereum.Namehash(name).Hex(),
		Owner:     strings.ToLower(common.HexToAddress(owner).Hex()),
		DID:       did,
		Expiry:    now.Unix() + int64(years)*yearSeconds,
		CreatedAt: now.UnixMilli(),
	}

	if err := r.store.Insert(ctx, sub); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrTaken, name)
		}
		return nil, fmt.Errorf("register subname %s: %w", name, err)
	}

	observability.RecordSubnameRegistered()
	r.logger.Printf("registered %s for %s until %s", name, sub.Owner, time.Unix(sub.Expiry, 0).UTC().Format(time.DateOnly))
	return sub, nil
}

// Resolve looks up a full subname.
func (r *Registrar) Resolve(ctx context.Context, name string) (*domain.Subname, error) {
	return r.store.GetByName(ctx, strings.ToLower(strings.TrimSpace(name)))
}

// ResolveDID returns the did text record of name.
func (r *Registrar) ResolveDID(ctx context.Context, name string) (string, error) {
	sub, err := r.Resolve(ctx, name)
	if err != nil {
		return "", err
	}
	if sub.DID == "" {
		return "", fmt.Errorf("%w: %s", ErrNoDID, sub.Name)
	}
	return sub.DID, nil
}

// ByOwner lists subnames owned by owner.
func (r *Registrar) ByOwner(ctx context.Context, owner string) ([]*domain.Subname, error) {
	return r.store.GetByOwner(ctx, strings.ToLower(owner))
}
