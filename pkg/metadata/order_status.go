package metadata

import "fmt"

// WorkOrderStatus tracks a production order through its lifecycle. Completed and
// cancelled are terminal.
type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderInProgress WorkOrderStatus = "in-progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

func (s WorkOrderStatus) IsValid() bool {
	switch s {
	case WorkOrderPending, WorkOrderInProgress, WorkOrderCompleted, WorkOrderCancelled:
		return true
	default:
		return false
	}
}

func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderCompleted || s == WorkOrderCancelled
}

func (s WorkOrderStatus) String() string {
	return string(s)
}

// PurchaseOrderStatus tracks a purchase order. received and cancelled are terminal.
type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "pending"
	PurchaseOrderApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderSent      PurchaseOrderStatus = "sent"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
)

var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderPending:  {PurchaseOrderApproved, PurchaseOrderCancelled},
	PurchaseOrderApproved: {PurchaseOrderSent, PurchaseOrderCancelled},
	PurchaseOrderSent:     {PurchaseOrderReceived, PurchaseOrderCancelled},
}

func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderPending, PurchaseOrderApproved, PurchaseOrderSent, PurchaseOrderReceived, PurchaseOrderCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is an allowed lifecycle step.
func (s PurchaseOrderStatus) CanTransition(next PurchaseOrderStatus) bool {
	for _, allowed := range purchaseOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PurchaseOrderStatus) Transition(next PurchaseOrderStatus) error {
	if !s.CanTransition(next) {
		return fmt.Errorf("purchase order cannot move from %s to %s", s, next)
	}
	return nil
}

func (s PurchaseOrderStatus) String() string {
	return string(s)
}
