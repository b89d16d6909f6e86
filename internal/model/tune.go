package model

import (
	"errors"
	"strings"
	"time"
)

// Tune is a saved vehicle setup shared in a user's garage, stored under
// tunes/{id}. Creator identity is denormalized so lists render without a
// profile lookup.
type Tune struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	CreatorName  string       `json:"creatorName"`
	CreatorPhoto *string      `json:"creatorPhoto"`
	CarName      string       `json:"carName"`
	ImageURL     *string      `json:"img"`
	PP           float64      `json:"pp"`
	Stats        TuneStats    `json:"stats"`
	Tyres        AxlePair     `json:"tyres"`
	Parts        TuneParts    `json:"parts"`
	Settings     TuneSettings `json:"settings"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// TuneStats are the headline performance figures.
type TuneStats struct {
	Power   float64 `json:"power"`  // HP
	Torque  float64 `json:"torque"` // kgfm
	Weight  float64 `json:"weight"` // kg
	Balance string  `json:"balance"`
}

// AxlePair is a front/rear string setting, e.g. tyre compounds.
type AxlePair struct {
	Front string `json:"f"`
	Rear  string `json:"r"`
}

// AxleValues is a front/rear numeric setting.
type AxleValues struct {
	Front float64 `json:"f"`
	Rear  float64 `json:"r"`
}

// TuneParts lists installed upgrade parts.
type TuneParts struct {
	Transmission string `json:"transmission"` // Normal, Manual, Sports, Racing
	Nitro        bool   `json:"nitro"`
	Turbo        string `json:"turbo"` // None, Low, Medium, High, Supercharger
}

// SuspensionSettings groups the per-axle suspension values.
type SuspensionSettings struct {
	BodyHeight  AxleValues `json:"bodyHeight"`
	AntiRollBar AxleValues `json:"antiRollBar"`
	DampingComp AxleValues `json:"dampingComp"`
	DampingExp  AxleValues `json:"dampingExp"`
	NatFreq     AxleValues `json:"natFreq"`
	Camber      AxleValues `json:"camber"`
	Toe         AxleValues `json:"toe"`
}

// DiffSettings groups the limited-slip differential values.
type DiffSettings struct {
	Initial         AxleValues `json:"initial"`
	Accel           AxleValues `json:"accel"`
	Braking         AxleValues `json:"braking"`
	TorqueVectoring string     `json:"torqueVectoring"`
	Distribution    string     `json:"distribution"`
}

// GearboxSettings is the fully-customisable transmission setup. Manual holds
// per-gear ratios in gear order; an empty slice means the stock gearing.
type GearboxSettings struct {
	TopSpeed float64   `json:"topSpeed"` // km/h, auto-adjust target
	Manual   []float64 `json:"manual"`
	Final    float64   `json:"final"`
}

// TuneSettings is the full tuning sheet.
type TuneSettings struct {
	Suspension   SuspensionSettings `json:"suspension"`
	BrakeBalance float64            `json:"brakeBalance"`
	Diff         DiffSettings       `json:"diff"`
	Aero         AxleValues         `json:"aero"`
	ECU          float64            `json:"ecu"`
	Ballast      float64            `json:"ballast"`
	BallastPos   float64            `json:"ballastPos"`
	Restrictor   float64            `json:"restrictor"`
	Transmission GearboxSettings    `json:"transmission"`
	NitroVal     float64            `json:"nitroVal"`
}

// Validate checks the fields a save requires.
func (t *Tune) Validate() error {
	if strings.TrimSpace(t.CarName) == "" {
		return ErrCarNameRequired
	}
	if t.UserID == "" {
		return ErrAuthRequired
	}
	return nil
}

// TuneListResponse is the garage/feed/search listing payload.
type TuneListResponse struct {
	Tunes []Tune `json:"tunes"`
}

// CreateTuneRequest is the request body for saving a tune. The server fills
// in id, creator identity and timestamps.
type CreateTuneRequest struct {
	CarName  string       `json:"carName"`
	ImageURL *string      `json:"img"`
	PP       float64      `json:"pp"`
	Stats    TuneStats    `json:"stats"`
	Tyres    AxlePair     `json:"tyres"`
	Parts    TuneParts    `json:"parts"`
	Settings TuneSettings `json:"settings"`
}

const (
	// FeedTuneLimit caps how many tunes one feed load returns.
	FeedTuneLimit = 50
)

var (
	ErrTuneNotFound    = errors.New("tune not found")
	ErrNotTuneOwner    = errors.New("not the owner of this tune")
	ErrCarNameRequired = errors.New("car name is required")
)
