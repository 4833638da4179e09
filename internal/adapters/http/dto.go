package http

import (
	"time"

	"github.com/hexapod/packs-go/internal/domain"
)

// IdentityResponse is the JSON shape of the authenticated user.
type IdentityResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// StatusResponse reports daily-gate eligibility.
type StatusResponse struct {
	CanOpen bool `json:"can_open"`
}

type CardResponse struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Tier  string `json:"tier"`
}

// PackResponse is the JSON shape of an opened pack.
type PackResponse struct {
	ID       string         `json:"id"`
	Cards    []CardResponse `json:"cards"`
	OpenedAt string         `json:"opened_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:          identity.ID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
	}
}

func toPackResponse(pack domain.Pack) PackResponse {
	cards := make([]CardResponse, len(pack.Cards))
	for i, card := range pack.Cards {
		cards[i] = CardResponse{
			Name:  card.Name,
			Image: card.Image,
			Tier:  string(card.Tier),
		}
	}
	return PackResponse{
		ID:       pack.ID,
		Cards:    cards,
		OpenedAt: pack.OpenedAt.Format(time.RFC3339Nano),
	}
}
