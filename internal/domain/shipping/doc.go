// Package shipping contains the Shipping bounded context.
// This context manages carrier-aggregator integrations, rate selection and
// the shipment lifecycle.
//
// Key concepts:
//   - CarrierProvider: Port interface for carrier aggregators (Shiprocket, Delhivery, Xpressbees)
//   - ShippingRequest/ShippingRate: Value objects for one quote cycle; a rate is only
//     meaningful paired with the provider code that produced it
//   - ShipmentResponse: Creation result whose tracking number is the durable key for
//     all later lifecycle operations
//   - WebhookEvent: Vendor notifications normalized onto the shared status taxonomy
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package shipping
