package event

// Category groups event types by the part of the booking lifecycle
// that produced them.
type Category string

const (
	CategoryRecurringReservation Category = "RECURRING_RESERVATION"
	CategoryWaitingList          Category = "WAITING_LIST"
	CategoryReassignment         Category = "REASSIGNMENT"
	CategoryResourceManagement   Category = "RESOURCE_MANAGEMENT"
	CategoryMaintenance          Category = "MAINTENANCE"
	CategoryCategoryManagement   Category = "CATEGORY_MANAGEMENT"
	CategoryImportExport         Category = "IMPORT_EXPORT"
	CategoryUnknown              Category = "UNKNOWN"
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Channel names a delivery medium. The gate and transport layers own
// the semantics; the catalog only declares defaults per event type.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelSMS      Channel = "SMS"
	ChannelPush     Channel = "PUSH"
	ChannelInApp    Channel = "IN_APP"
	ChannelWhatsApp Channel = "WHATSAPP"
)

// Event type names as emitted by the booking platform.
const (
	TypeRecurringReservationCreated   = "RecurringReservationCreated"
	TypeRecurringReservationUpdated   = "RecurringReservationUpdated"
	TypeRecurringReservationCancelled = "RecurringReservationCancelled"
	TypeReservationOccurrenceReminder = "ReservationOccurrenceReminder"
	TypeReservationConflictDetected   = "ReservationConflictDetected"
	TypeReservationSeriesCompleted    = "ReservationSeriesCompleted"

	TypeWaitingListJoined        = "WaitingListJoined"
	TypeWaitingListLeft          = "WaitingListLeft"
	TypeWaitingListSlotAvailable = "WaitingListSlotAvailable"
	TypeWaitingListSlotConfirmed = "WaitingListSlotConfirmed"
	TypeWaitingListSlotDeclined  = "WaitingListSlotDeclined"
	TypeWaitingListSlotExpired   = "WaitingListSlotExpired"
	TypeWaitingListPromoted      = "WaitingListPromoted"

	TypeReassignmentRequested       = "ReassignmentRequested"
	TypeReassignmentApproved        = "ReassignmentApproved"
	TypeReassignmentRejected        = "ReassignmentRejected"
	TypeReassignmentCompleted       = "ReassignmentCompleted"
	TypeReassignmentEquivalentFound = "ReassignmentEquivalentFound"

	TypeResourceCreated         = "ResourceCreated"
	TypeResourceUpdated         = "ResourceUpdated"
	TypeResourceDeleted         = "ResourceDeleted"
	TypeResourceCapacityChanged = "ResourceCapacityChanged"
	TypeResourceUnavailable     = "ResourceUnavailable"

	TypeMaintenanceScheduled = "MaintenanceScheduled"
	TypeMaintenanceStarted   = "MaintenanceStarted"
	TypeMaintenanceCompleted = "MaintenanceCompleted"
	TypeMaintenanceCancelled = "MaintenanceCancelled"

	TypeCategoryCreated = "CategoryCreated"
	TypeCategoryUpdated = "CategoryUpdated"
	TypeCategoryDeleted = "CategoryDeleted"

	TypeImportCompleted = "ImportCompleted"
	TypeImportFailed    = "ImportFailed"
	TypeExportCompleted = "ExportCompleted"

	// Internal bookkeeping events. Classified so audits can attribute
	// them, but never notified (see excluded below).
	TypeWaitingListQueueReordered     = "WaitingListQueueReordered"
	TypeResourceIndexRebuilt          = "ResourceIndexRebuilt"
	TypeReservationSeriesRecalculated = "ReservationSeriesRecalculated"
)

// Classification is derived per event type, never stored.
type Classification struct {
	Category             Category
	Priority             Priority
	Channels             []Channel
	RequiresConfirmation bool
	RequiresAudit        bool
}

var unknownClassification = Classification{
	Category: CategoryUnknown,
	Priority: PriorityLow,
}

// catalog is the static routing table. Loaded once, never mutated.
var catalog = map[string]Classification{
	TypeRecurringReservationCreated:   {CategoryRecurringReservation, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeRecurringReservationUpdated:   {CategoryRecurringReservation, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeRecurringReservationCancelled: {CategoryRecurringReservation, PriorityHigh, []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp}, false, true},
	TypeReservationOccurrenceReminder: {CategoryRecurringReservation, PriorityMedium, []Channel{ChannelPush, ChannelInApp}, false, false},
	TypeReservationConflictDetected:   {CategoryRecurringReservation, PriorityHigh, []Channel{ChannelEmail, ChannelPush, ChannelInApp}, false, true},
	TypeReservationSeriesCompleted:    {CategoryRecurringReservation, PriorityLow, []Channel{ChannelInApp}, false, false},

	TypeWaitingListJoined:        {CategoryWaitingList, PriorityLow, []Channel{ChannelInApp}, false, false},
	TypeWaitingListLeft:          {CategoryWaitingList, PriorityLow, []Channel{ChannelInApp}, false, false},
	TypeWaitingListSlotAvailable: {CategoryWaitingList, PriorityHigh, []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp}, true, true},
	TypeWaitingListSlotConfirmed: {CategoryWaitingList, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeWaitingListSlotDeclined:  {CategoryWaitingList, PriorityLow, []Channel{ChannelInApp}, false, true},
	TypeWaitingListSlotExpired:   {CategoryWaitingList, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeWaitingListPromoted:      {CategoryWaitingList, PriorityMedium, []Channel{ChannelPush, ChannelInApp}, false, false},

	TypeReassignmentRequested:       {CategoryReassignment, PriorityHigh, []Channel{ChannelEmail, ChannelPush, ChannelInApp}, true, true},
	TypeReassignmentApproved:        {CategoryReassignment, PriorityHigh, []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp}, false, true},
	TypeReassignmentRejected:        {CategoryReassignment, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeReassignmentCompleted:       {CategoryReassignment, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeReassignmentEquivalentFound: {CategoryReassignment, PriorityMedium, []Channel{ChannelEmail, ChannelPush, ChannelInApp}, false, false},

	TypeResourceCreated:         {CategoryResourceManagement, PriorityLow, []Channel{ChannelInApp}, false, true},
	TypeResourceUpdated:         {CategoryResourceManagement, PriorityLow, []Channel{ChannelInApp}, false, true},
	TypeResourceDeleted:         {CategoryResourceManagement, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeResourceCapacityChanged: {CategoryResourceManagement, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeResourceUnavailable:     {CategoryResourceManagement, PriorityHigh, []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp}, false, true},

	TypeMaintenanceScheduled: {CategoryMaintenance, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeMaintenanceStarted:   {CategoryMaintenance, PriorityHigh, []Channel{ChannelEmail, ChannelPush, ChannelInApp}, false, true},
	TypeMaintenanceCompleted: {CategoryMaintenance, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeMaintenanceCancelled: {CategoryMaintenance, PriorityLow, []Channel{ChannelInApp}, false, true},

	TypeCategoryCreated: {CategoryCategoryManagement, PriorityLow, []Channel{ChannelInApp}, false, false},
	TypeCategoryUpdated: {CategoryCategoryManagement, PriorityLow, []Channel{ChannelInApp}, false, false},
	TypeCategoryDeleted: {CategoryCategoryManagement, PriorityLow, []Channel{ChannelInApp}, false, true},

	TypeImportCompleted: {CategoryImportExport, PriorityLow, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeImportFailed:    {CategoryImportExport, PriorityMedium, []Channel{ChannelEmail, ChannelInApp}, false, true},
	TypeExportCompleted: {CategoryImportExport, PriorityLow, []Channel{ChannelEmail, ChannelInApp}, false, false},

	TypeWaitingListQueueReordered:     {CategoryWaitingList, PriorityLow, nil, false, false},
	TypeResourceIndexRebuilt:          {CategoryResourceManagement, PriorityLow, nil, false, false},
	TypeReservationSeriesRecalculated: {CategoryRecurringReservation, PriorityLow, nil, false, false},
}

// excluded lists classified event types that never produce
// notifications. These are internal optimization events.
var excluded = map[string]struct{}{
	TypeWaitingListQueueReordered:     {},
	TypeResourceIndexRebuilt:          {},
	TypeReservationSeriesRecalculated: {},
}

// Classify is total over arbitrary input: unrecognized types degrade
// to the UNKNOWN classification rather than failing.
func Classify(eventType string) Classification {
	if c, ok := catalog[eventType]; ok {
		return c
	}
	return unknownClassification
}

// ShouldNotify reports whether an event type warrants dispatch at all.
func ShouldNotify(eventType string) bool {
	if _, ok := excluded[eventType]; ok {
		return false
	}
	c, ok := catalog[eventType]
	return ok && c.Category != CategoryUnknown && len(c.Channels) > 0
}

// KnownTypes returns the catalog keys, for diagnostics and tests.
func KnownTypes() []string {
	out := make([]string, 0, len(catalog))
	for t := range catalog {
		out = append(out, t)
	}
	return out
}
