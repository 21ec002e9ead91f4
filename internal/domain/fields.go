package domain

// Canonical shipment field names. Raw document headers are mapped onto these.
const (
	FieldLoadNumber            = "loadNumber"
	FieldOrderNumber           = "orderNumber"
	FieldPONumber              = "poNumber"
	FieldProNumber             = "proNumber"
	FieldBOLNumber             = "bolNumber"
	FieldCarrier               = "carrier"
	FieldShipToCustomer        = "shipToCustomer"
	FieldEquipmentType         = "equipmentType"
	FieldTotalWeight           = "totalWeight"
	FieldRate                  = "rate"
	FieldSpecialInstructions   = "specialInstructions"
	FieldPromisedShipDate      = "promisedShipDate"
	FieldRequestedDeliveryDate = "requestedDeliveryDate"
	FieldPickupDate            = "pickupDate"
	FieldDeliveryDate          = "deliveryDate"
	FieldOriginStreet          = "originStreet"
	FieldOriginCity            = "originCity"
	FieldOriginState           = "originState"
	FieldOriginZip             = "originZip"
	FieldDestinationStreet     = "destinationStreet"
	FieldDestinationCity       = "destinationCity"
	FieldDestinationState      = "destinationState"
	FieldDestinationZip        = "destinationZip"
	FieldPickupContactName     = "pickupContactName"
	FieldPickupContactPhone    = "pickupContactPhone"
	FieldDropoffContactName    = "dropoffContactName"
	FieldDropoffContactPhone   = "dropoffContactPhone"
	FieldItemDescription       = "itemDescription"
	FieldItemQuantity          = "itemQuantity"
	FieldItemWeight            = "itemWeight"
	FieldItemPallets           = "itemPallets"
	FieldItemPieces            = "itemPieces"
	FieldCommodity             = "commodity"
)

// FieldSynonyms is the static, read-only synonym dictionary: canonical field to
// the raw header spellings commonly seen in carrier and shipper spreadsheets.
var FieldSynonyms = map[string][]string{
	FieldLoadNumber:            {"load number", "load #", "load no", "load id", "loadnum", "shipment number", "shipment #", "shipment id"},
	FieldOrderNumber:           {"order number", "order #", "order no", "order id", "so number", "sales order", "so #"},
	FieldPONumber:              {"po number", "po #", "po no", "purchase order", "purchase order number", "customer po"},
	FieldProNumber:             {"pro number", "pro #", "pro no", "tracking number", "tracking #"},
	FieldBOLNumber:             {"bol number", "bol #", "bol no", "bill of lading", "bill of lading number"},
	FieldCarrier:               {"carrier", "carrier name", "scac", "trucking company", "transport company"},
	FieldShipToCustomer:        {"ship to customer", "ship to", "customer", "customer name", "consignee", "consignee name", "receiver", "deliver to"},
	FieldEquipmentType:         {"equipment type", "equipment", "trailer type", "truck type", "mode"},
	FieldTotalWeight:           {"total weight", "weight", "gross weight", "weight (lbs)", "weight lbs", "total wt", "wt"},
	FieldRate:                  {"rate", "linehaul rate", "freight rate", "total rate", "cost", "price", "amount"},
	FieldSpecialInstructions:   {"special instructions", "instructions", "notes", "comments", "remarks"},
	FieldPromisedShipDate:      {"promised ship date", "ship date", "promised date", "pickup ready date", "ready date", "must ship date"},
	FieldRequestedDeliveryDate: {"requested delivery date", "delivery date requested", "requested date", "due date", "need by date", "must arrive by"},
	FieldPickupDate:            {"pickup date", "pick up date", "collection date", "origin date"},
	FieldDeliveryDate:          {"delivery date", "deliver date", "arrival date", "destination date", "eta"},
	FieldOriginStreet:          {"origin street", "origin address", "pickup address", "from address", "shipper address"},
	FieldOriginCity:            {"origin city", "pickup city", "from city", "shipper city"},
	FieldOriginState:           {"origin state", "pickup state", "from state", "shipper state"},
	FieldOriginZip:             {"origin zip", "origin zip code", "pickup zip", "from zip", "shipper zip", "origin postal code"},
	FieldDestinationStreet:     {"destination street", "destination address", "delivery address", "to address", "consignee address", "ship to address"},
	FieldDestinationCity:       {"destination city", "delivery city", "to city", "consignee city", "ship to city"},
	FieldDestinationState:      {"destination state", "delivery state", "to state", "consignee state", "ship to state"},
	FieldDestinationZip:        {"destination zip", "destination zip code", "delivery zip", "to zip", "consignee zip", "ship to zip", "destination postal code"},
	FieldPickupContactName:     {"pickup contact", "pickup contact name", "shipper contact", "origin contact"},
	FieldPickupContactPhone:    {"pickup phone", "pickup contact phone", "shipper phone", "origin phone"},
	FieldDropoffContactName:    {"dropoff contact", "delivery contact", "delivery contact name", "consignee contact", "receiver contact"},
	FieldDropoffContactPhone:   {"dropoff phone", "delivery phone", "consignee phone", "receiver phone"},
	FieldItemDescription:       {"item description", "description", "product", "product description", "freight description"},
	FieldItemQuantity:          {"quantity", "qty", "item quantity", "units", "unit count"},
	FieldItemWeight:            {"item weight", "line weight", "piece weight"},
	FieldItemPallets:           {"pallets", "pallet count", "plts", "skids", "skid count"},
	FieldItemPieces:            {"pieces", "piece count", "pcs", "carton count", "cartons"},
	FieldCommodity:             {"commodity", "commodity type", "freight class", "goods type"},
}

// DateFields is the set of canonical fields whose values are normalized to dates.
var DateFields = map[string]bool{
	FieldPromisedShipDate:      true,
	FieldRequestedDeliveryDate: true,
	FieldPickupDate:            true,
	FieldDeliveryDate:          true,
}

// NumericFields is the set of canonical fields parsed as numbers.
var NumericFields = map[string]bool{
	FieldTotalWeight:  true,
	FieldRate:         true,
	FieldItemQuantity: true,
	FieldItemWeight:   true,
	FieldItemPallets:  true,
	FieldItemPieces:   true,
}

// CriticalFields are the fields whose absence materially reduces confidence and
// forces human review. "items" stands for a non-empty item list.
var CriticalFields = []string{
	FieldLoadNumber,
	FieldOrderNumber,
	FieldPromisedShipDate,
	FieldShipToCustomer,
	"items",
	FieldTotalWeight,
}

// OptionalScoredFields contribute partial completeness credit when present.
var OptionalScoredFields = []string{
	FieldPONumber,
	FieldProNumber,
	FieldBOLNumber,
	FieldCarrier,
	FieldEquipmentType,
	FieldRate,
	FieldRequestedDeliveryDate,
	FieldPickupDate,
	FieldDeliveryDate,
	FieldDestinationCity,
	FieldDestinationState,
	FieldDestinationZip,
	FieldOriginCity,
	FieldOriginState,
	FieldOriginZip,
	FieldDropoffContactName,
	FieldDropoffContactPhone,
}

// CanonicalFields returns the full ordered catalog of canonical field names.
func CanonicalFields() []string {
	return []string{
		FieldLoadNumber, FieldOrderNumber, FieldPONumber, FieldProNumber, FieldBOLNumber,
		FieldCarrier, FieldShipToCustomer, FieldEquipmentType, FieldTotalWeight, FieldRate,
		FieldSpecialInstructions,
		FieldPromisedShipDate, FieldRequestedDeliveryDate, FieldPickupDate, FieldDeliveryDate,
		FieldOriginStreet, FieldOriginCity, FieldOriginState, FieldOriginZip,
		FieldDestinationStreet, FieldDestinationCity, FieldDestinationState, FieldDestinationZip,
		FieldPickupContactName, FieldPickupContactPhone,
		FieldDropoffContactName, FieldDropoffContactPhone,
		FieldItemDescription, FieldItemQuantity, FieldItemWeight, FieldItemPallets,
		FieldItemPieces, FieldCommodity,
	}
}

// IsCanonicalField reports whether name is a known canonical field.
func IsCanonicalField(name string) bool {
	for _, f := range CanonicalFields() {
		if f == name {
			return true
		}
	}
	return false
}
