package cargurus

import (
	"github.com/PaesslerAG/jsonpath"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

const (
	entitiesPath   = "$.pricePointsEntities"
	pricePointsKey = "pricePoints"
)

// ExtractPricePoints pulls the raw price points for one sub-range fetch out
// of a decoded price-trends response.
//
// An empty entity collection or an empty price-point collection fails with
// kind NoDataAvailable, which the orchestrator treats as "skip this chunk".
// Any structurally unexpected shape (absent keys, wrong field types) fails
// with kind UnexpectedResponseFormat, which is fatal.
//
// Only the first entity is consulted; the client requests a single vehicle
// per call, so additional entities are ignored.
func ExtractPricePoints(doc any) ([]models.RawPricePoint, error) {
	const op = "cargurus.ExtractPricePoints"

	entitiesVal, err := jsonpath.Get(entitiesPath, doc)
	if err != nil {
		return nil, errkind.Wrap(errkind.UnexpectedResponseFormat, op, err)
	}

	entities, ok := entitiesVal.([]any)
	if !ok {
		return nil, errkind.New(errkind.UnexpectedResponseFormat, op,
			"pricePointsEntities is not an array")
	}
	if len(entities) == 0 {
		return nil, errkind.New(errkind.NoDataAvailable, op,
			"no price data available for the specified vehicle and date range")
	}

	entity, ok := entities[0].(map[string]any)
	if !ok {
		return nil, errkind.New(errkind.UnexpectedResponseFormat, op,
			"price points entity is not an object")
	}

	pointsVal, present := entity[pricePointsKey]
	if !present {
		return nil, errkind.New(errkind.UnexpectedResponseFormat, op,
			"price points entity has no pricePoints field")
	}
	points, ok := pointsVal.([]any)
	if !ok {
		return nil, errkind.New(errkind.UnexpectedResponseFormat, op,
			"pricePoints is not an array")
	}
	if len(points) == 0 {
		return nil, errkind.New(errkind.NoDataAvailable, op,
			"no price data available for the specified vehicle and date range")
	}

	raw := make([]models.RawPricePoint, 0, len(points))
	for _, p := range points {
		// Non-object elements are individual malformed points; the
		// normalizer's skip semantics cover them, so they are dropped
		// here rather than failing the whole chunk.
		if m, ok := p.(map[string]any); ok {
			raw = append(raw, models.RawPricePoint(m))
		}
	}

	return raw, nil
}
