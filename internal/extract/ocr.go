package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"shipstream/internal/domain"
	"shipstream/internal/normalize"
	"shipstream/internal/port"
)

const ocrMaxTokens = 4096

// OCRExtractor pulls shipment data out of document images via a vision-capable
// completion service. One vision pass asks for structured JSON plus the raw
// text; when the model returns text but no structure, a second text-only pass
// converts the recovered text into the structured shape.
type OCRExtractor struct {
	client    port.CompletionClient
	dateOrder normalize.DateOrder
}

// NewOCRExtractor creates an image extraction adapter.
func NewOCRExtractor(client port.CompletionClient, dateOrder normalize.DateOrder) *OCRExtractor {
	return &OCRExtractor{client: client, dateOrder: dateOrder}
}

// OCRInput is one image to extract.
type OCRInput struct {
	DocumentID  uuid.UUID
	FileName    string
	ImageBytes  []byte
	ContentType string
}

// OCRResult is the recovered shipment plus extraction provenance.
type OCRResult struct {
	Bundle     domain.ShipmentBundle
	RawText    string
	Confidence float64
}

// Extract runs the vision pass and, if needed, the text fallback pass. When
// neither pass recovers anything it returns domain.ErrNoDataExtracted; it
// never fabricates an empty-but-successful bundle.
func (e *OCRExtractor) Extract(ctx context.Context, in OCRInput) (*OCRResult, error) {
	resp, err := e.client.Complete(ctx, port.CompletionRequest{
		System:           ocrSystemPrompt,
		Prompt:           ocrVisionPrompt,
		ImageBytes:       in.ImageBytes,
		ImageContentType: in.ContentType,
		MaxTokens:        ocrMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("vision extraction: %w", err)
	}

	payload, err := parseOCRPayload(resp.Text)
	if err != nil {
		log.Printf("extract.OCRExtractor.Extract: unparseable vision response for %s: %v", in.FileName, err)
		return nil, fmt.Errorf("%w: vision response was not usable", domain.ErrNoDataExtracted)
	}

	if payload.Shipment == nil {
		if strings.TrimSpace(payload.RawText) == "" {
			return nil, domain.ErrNoDataExtracted
		}
		// Structure missing but text recovered: second, text-only pass.
		payload, err = e.structureText(ctx, payload.RawText)
		if err != nil {
			return nil, err
		}
	}

	bundle := e.toBundle(in, payload)
	return &OCRResult{
		Bundle:     bundle,
		RawText:    payload.RawText,
		Confidence: payload.Confidence,
	}, nil
}

func (e *OCRExtractor) structureText(ctx context.Context, rawText string) (*ocrPayload, error) {
	resp, err := e.client.Complete(ctx, port.CompletionRequest{
		System:    ocrSystemPrompt,
		Prompt:    fmt.Sprintf(ocrTextPrompt, rawText),
		MaxTokens: ocrMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("text structuring pass: %w", err)
	}
	payload, err := parseOCRPayload(resp.Text)
	if err != nil || payload.Shipment == nil {
		return nil, domain.ErrNoDataExtracted
	}
	if payload.RawText == "" {
		payload.RawText = rawText
	}
	return payload, nil
}

func (e *OCRExtractor) toBundle(in OCRInput, payload *ocrPayload) domain.ShipmentBundle {
	s := payload.Shipment
	b := domain.ShipmentBundle{
		ID:                  uuid.New(),
		LoadNumber:          normalize.CleanString(s.LoadNumber),
		OrderNumber:         normalize.CleanString(s.OrderNumber),
		PONumber:            normalize.CleanString(s.PONumber),
		ProNumber:           normalize.CleanString(s.ProNumber),
		BOLNumber:           normalize.CleanString(s.BOLNumber),
		Carrier:             normalize.CleanString(s.Carrier),
		ShipToCustomer:      normalize.CleanString(s.ShipToCustomer),
		EquipmentType:       normalize.CleanString(s.EquipmentType),
		SpecialInstructions: normalize.CleanString(s.SpecialInstructions),
		CustomDetails:       map[string]string{},
		Metadata:            domain.NewBundleMetadata(in.DocumentID, ParserVersion),
		Source:              domain.SourceInfo{FileName: in.FileName, RowIndex: 0},
	}

	if n, ok := normalize.ParseNumber(s.TotalWeight); ok {
		b.TotalWeight = n
	}
	if n, ok := normalize.ParseNumber(s.Rate); ok {
		b.Rate = n
	}

	b.PromisedShipDate = normalize.ParseDate(s.PromisedShipDate, e.dateOrder)
	b.RequestedDeliveryDate = normalize.ParseDate(s.RequestedDeliveryDate, e.dateOrder)
	b.PickupDate = normalize.ParseDate(s.PickupDate, e.dateOrder)
	b.DeliveryDate = normalize.ParseDate(s.DeliveryDate, e.dateOrder)

	b.Origin = domain.Address{
		Street: normalize.CleanString(s.Origin.Street),
		City:   normalize.CleanString(s.Origin.City),
		State:  normalize.CleanString(s.Origin.State),
		Zip:    normalize.CleanString(s.Origin.Zip),
	}
	b.Destination = domain.Address{
		Street: normalize.CleanString(s.Destination.Street),
		City:   normalize.CleanString(s.Destination.City),
		State:  normalize.CleanString(s.Destination.State),
		Zip:    normalize.CleanString(s.Destination.Zip),
	}

	for _, it := range s.Items {
		item := domain.ShipmentItem{
			Description: normalize.CleanString(it.Description),
			Commodity:   normalize.CleanString(it.Commodity),
		}
		item.Quantity, _ = normalize.ParseNumber(it.Quantity)
		item.Weight, _ = normalize.ParseNumber(it.Weight)
		item.Pallets, _ = normalize.ParseNumber(it.Pallets)
		item.Pieces, _ = normalize.ParseNumber(it.Pieces)
		if item != (domain.ShipmentItem{}) {
			b.Items = append(b.Items, item)
		}
	}

	for k, v := range s.Other {
		if cleaned := normalize.CleanString(v); cleaned != "" {
			b.CustomDetails[k] = cleaned
		}
	}

	if payload.Confidence > 0 && payload.Confidence < 0.75 {
		b.Metadata.NeedsReview = true
	}
	return b
}

// ocrPayload is the exact response shape both passes must produce. All leaf
// values arrive as strings; normalization happens on our side, not the model's.
type ocrPayload struct {
	Shipment   *ocrShipment `json:"shipment"`
	RawText    string       `json:"raw_text"`
	Confidence float64      `json:"confidence"`
}

type ocrShipment struct {
	LoadNumber            string            `json:"loadNumber"`
	OrderNumber           string            `json:"orderNumber"`
	PONumber              string            `json:"poNumber"`
	ProNumber             string            `json:"proNumber"`
	BOLNumber             string            `json:"bolNumber"`
	Carrier               string            `json:"carrier"`
	ShipToCustomer        string            `json:"shipToCustomer"`
	EquipmentType         string            `json:"equipmentType"`
	TotalWeight           string            `json:"totalWeight"`
	Rate                  string            `json:"rate"`
	SpecialInstructions   string            `json:"specialInstructions"`
	PromisedShipDate      string            `json:"promisedShipDate"`
	RequestedDeliveryDate string            `json:"requestedDeliveryDate"`
	PickupDate            string            `json:"pickupDate"`
	DeliveryDate          string            `json:"deliveryDate"`
	Origin                ocrAddress        `json:"origin"`
	Destination           ocrAddress        `json:"destination"`
	Items                 []ocrItem         `json:"items"`
	Other                 map[string]string `json:"other"`
}

type ocrAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type ocrItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Weight      string `json:"weight"`
	Pallets     string `json:"pallets"`
	Pieces      string `json:"pieces"`
	Commodity   string `json:"commodity"`
}

func parseOCRPayload(text string) (*ocrPayload, error) {
	cleaned := stripCodeFences(text)
	var payload ocrPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// stripCodeFences removes markdown fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
