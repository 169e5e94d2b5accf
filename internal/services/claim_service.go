package services

import (
	"context"
	"errors"
	"fmt"
	"insurance-service/internal/models"
	"strings"
)

type ClaimService struct {
	claims   ClaimStore
	policies PolicyStore
}

func NewClaimService(claims ClaimStore, policies PolicyStore) *ClaimService {
	return &ClaimService{claims: claims, policies: policies}
}

// CreateClaim checks, in order, that the policy exists, the claim key is
// free, the status is known and the date parses. Nothing is written unless
// all four pass.
func (s *ClaimService) CreateClaim(ctx context.Context, req models.CreateClaimRequest) (*models.CommandResult, error) {
	policyNumber := models.NormalizedPolicyNumber(req.PolicyNumber)

	if _, err := s.policies.GetByNumber(ctx, policyNumber); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: policy %s does not exist", models.ErrUnknownReference, policyNumber)
		}
		return nil, err
	}

	if _, err := s.claims.GetByClaimID(ctx, req.ClaimID); err == nil {
		return nil, fmt.Errorf("%w: claim %d already exists", models.ErrDuplicateKey, req.ClaimID)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	status, err := models.ParseClaimStatus(req.Status)
	if err != nil {
		return nil, err
	}

	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, err
	}

	claim := models.Claim{
		ClaimID:         req.ClaimID,
		PolicyNumber:    policyNumber,
		Date:            strings.TrimSpace(req.Date),
		Type:            strings.TrimSpace(req.Type),
		EstimatedAmount: req.EstimatedAmount,
		Description:     strings.TrimSpace(req.Description),
		Status:          status,
	}
	ref, err := s.claims.Create(ctx, &claim)
	if err != nil {
		return nil, err
	}

	return &models.CommandResult{
		Message:    fmt.Sprintf("Siniestro %d registrado para la póliza %s", claim.ClaimID, policyNumber),
		StorageRef: ref,
		Matched:    1,
		Modified:   1,
	}, nil
}
