package extract

const ocrSystemPrompt = `You are a logistics document reader. You are shown freight documents: bills of lading, load confirmations, rate confirmations, and shipping manifests. You extract shipment details into JSON exactly matching the schema you are given. You transcribe values as they appear on the document; you never invent values that are not present. Respond with JSON only, no prose.`

const ocrVisionPrompt = `Read the attached shipment document image and respond with a single JSON object:

{
  "shipment": {
    "loadNumber": "", "orderNumber": "", "poNumber": "", "proNumber": "",
    "bolNumber": "", "carrier": "", "shipToCustomer": "", "equipmentType": "",
    "totalWeight": "", "rate": "", "specialInstructions": "",
    "promisedShipDate": "", "requestedDeliveryDate": "", "pickupDate": "", "deliveryDate": "",
    "origin": {"street": "", "city": "", "state": "", "zip": ""},
    "destination": {"street": "", "city": "", "state": "", "zip": ""},
    "items": [{"description": "", "quantity": "", "weight": "", "pallets": "", "pieces": "", "commodity": ""}],
    "other": {}
  },
  "raw_text": "<full transcription of all legible text>",
  "confidence": 0.0
}

Rules:
- Every leaf value is a string, transcribed as printed. Leave a field "" when absent.
- Put labeled values that fit no schema field into "other" keyed by their printed label.
- "raw_text" must always hold the full transcription, even when structure extraction fails.
- If the image holds no usable shipment data, set "shipment" to null and "raw_text" to whatever text is legible.
- "confidence" is your 0.0-1.0 estimate of transcription accuracy.`

const ocrTextPrompt = `The following text was transcribed from a shipment document. Convert it into the same JSON object schema as before: {"shipment": {...}, "raw_text": "...", "confidence": 0.0}. Set "shipment" to null only if the text holds no shipment data at all.

Transcribed text:
%s`
