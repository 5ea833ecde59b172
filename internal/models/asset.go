package models

import "time"

// Kind rozróżnia zdjęcia i filmy. Oba rodzaje mają ten sam cykl życia,
// różnią się tylko katalogiem na dysku i akceptowanymi typami plików.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

func (k Kind) Valid() bool {
	return k == KindPhoto || k == KindVideo
}

// Owner is the minimal user identity attached to an asset in read responses.
type Owner struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Asset struct {
	ID              int64     `json:"id"`
	Kind            Kind      `json:"kind"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	FullDescription *string   `json:"full_description"`
	StoredFilename  string    `json:"filename"`
	OwnerID         int64     `json:"owner_id"`
	CreatedAt       time.Time `json:"created_at"`
	Owner           *Owner    `json:"user,omitempty"`
}
