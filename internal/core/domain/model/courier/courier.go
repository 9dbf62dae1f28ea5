package courier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when attempting to create a courier without a phone number.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
)

// Courier represents a delivery rider.
// It is an aggregate root that manages courier identity and availability.
// Couriers are picked by the assignment scheduler, carry one order at a time
// and return to the pool when the order completes or is cancelled.
//
// Key responsibilities:
//   - Managing courier identity (ID, name, phone, vehicle)
//   - Tracking availability (Available, Busy, Offline)
//   - Creating assignments when taking an order
//
// Business rules:
//   - Courier must have a valid UUID, non-empty name and phone, and a known vehicle type
//   - New couriers start Available
//   - Only an Available courier can take an order; taking one makes it Busy
//   - Busy is entered and left only through TakeOrder and Release
//
// Example usage:
//
//	c, err := courier.NewCourier(kernel.NewUUID(), "Budi", "+62811000111", courier.Motorbike)
//	if err != nil {
//	    // Handle construction error
//	}
//	// Courier is ready to be assigned
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// name is the human-readable name of the courier
	name string
	// phone is shown to the customer once the order is on its way
	phone string
	// vehicleType is copied onto each assignment
	vehicleType VehicleType
	// availability decides whether the scheduler may pick this courier
	availability Availability
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a new Available Courier with the specified parameters.
// This is the only way to create a valid Courier instance.
//
// Parameters:
//   - id: Unique identifier for the courier (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//   - phone: Contact number (must be non-empty)
//   - vehicleType: Motorbike, Bicycle or Car
//
// Returns:
//   - *Courier: A fully initialized courier ready for assignment
//   - error: Validation error if any parameter is invalid (aggregated errors for multiple issues)
//
// Example:
//
//	c, err := NewCourier(kernel.NewUUID(), "Alice", "+62811", Bicycle)
//	if err != nil {
//	    log.Fatal("Failed to create courier:", err)
//	}
func NewCourier(id kernel.UUID, name, phone string, vehicleType VehicleType) (*Courier, error) {
	return RestoreCourier(id, name, phone, vehicleType, Available)
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage,
// including its availability.
//
// Parameters:
//   - id: Unique identifier for the courier
//   - name: Human-readable courier name
//   - phone: Contact number
//   - vehicleType: Vehicle the courier rides
//   - availability: Persisted availability
//
// Returns:
//   - *Courier: Restored courier aggregate
//   - error: Validation error if any parameter is invalid
func RestoreCourier(
	id kernel.UUID,
	name string,
	phone string,
	vehicleType VehicleType,
	availability Availability,
) (*Courier, error) {
	courier := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
		courier.setVehicleType(vehicleType),
		courier.setAvailability(availability),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// IsEqual compares two couriers for equality based on their unique identifiers.
//
// Parameters:
//   - other: The courier to compare with (can be nil)
//
// Returns:
//   - bool: true if couriers have the same ID, false otherwise
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// Validate checks if the Courier was properly constructed using the NewCourier constructor.
// The zero value of Courier is invalid and will fail this validation.
//
// Returns:
//   - error: ErrCourierIsNotConstructed if improperly initialized, nil if valid
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the unique identifier of the courier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the human-readable name of the courier.
func (c *Courier) Name() string {
	return c.name
}

// Phone returns the contact number of the courier.
func (c *Courier) Phone() string {
	return c.phone
}

// VehicleType returns the vehicle the courier rides.
func (c *Courier) VehicleType() VehicleType {
	return c.vehicleType
}

// Availability returns the current dispatch state.
func (c *Courier) Availability() Availability {
	return c.availability
}

// IsAvailable reports whether the scheduler may pick this courier.
func (c *Courier) IsAvailable() bool {
	return c.availability == Available
}

// TakeOrder assigns the courier to an order.
// The courier becomes Busy and a new active Assignment is returned for the
// caller to persist in the same transaction.
//
// Parameters:
//   - assignmentID: Identifier of the new assignment
//   - orderID: The order to carry (must be valid UUID)
//   - at: Assignment time
//
// Returns:
//   - *Assignment: The new active assignment
//   - error: ConcurrencyConflictError if the courier is not Available, or a validation error
//
// State changes:
//   - Availability becomes Busy
//
// Example:
//
//	a, err := c.TakeOrder(kernel.NewUUID(), o.ID(), now)
//	if err != nil {
//	    return err
//	}
//	err = assignmentRepo.Add(ctx, a)
func (c *Courier) TakeOrder(assignmentID, orderID kernel.UUID, at time.Time) (*Assignment, error) {
	if c.availability != Available {
		return nil, errs.NewConcurrencyConflictError("courier", c.id.String())
	}

	a, err := NewAssignment(assignmentID, orderID, c.id, c.vehicleType, at)
	if err != nil {
		return nil, err
	}

	c.availability = Busy
	return a, nil
}

// Release returns the courier to the pool after the assignment ends.
//
// Parameters:
//   - assignment: The courier's active assignment (must belong to this courier)
//   - at: Release time
//
// Returns:
//   - error: Validation error if the assignment belongs to another courier or was already released
//
// State changes:
//   - Assignment is released
//   - Availability becomes Available, unless the courier went Offline meanwhile
func (c *Courier) Release(assignment *Assignment, at time.Time) error {
	if err := assignment.Validate(); err != nil {
		return err
	}
	if !assignment.CourierID().IsEqual(c.id) {
		return errs.NewValueIsInvalidErrorWithCause("assignment",
			fmt.Errorf("assignment %s belongs to courier %s", assignment.ID(), assignment.CourierID()))
	}
	if err := assignment.Release(at); err != nil {
		return err
	}

	if c.availability == Busy {
		c.availability = Available
	}
	return nil
}

// SetAvailability is the operator switch between Available and Offline.
//
// Parameters:
//   - availability: Available or Offline
//
// Returns:
//   - error: Validation error for Busy or unknown values, StateTransitionError if the courier is Busy
//
// Business rules:
//   - Busy cannot be set directly, it follows assignments
//   - A Busy courier stays Busy until the assignment is released
func (c *Courier) SetAvailability(availability Availability) error {
	if err := availability.Validate(); err != nil {
		return err
	}
	if availability == Busy {
		return errs.NewValueIsInvalidErrorWithCause("availability", errors.New("busy follows assignments and cannot be set"))
	}
	if c.availability == Busy {
		return errs.NewStateTransitionError(Busy.String(), availability.String(), "courier is carrying an order")
	}

	c.availability = availability
	return nil
}

// setID sets the courier's unique identifier with validation.
func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.id = id
	return nil
}

// setName sets the courier's name with validation.
func (c *Courier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

// setPhone sets the courier's phone number with validation.
func (c *Courier) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneIsRequired
	}

	c.phone = phone
	return nil
}

func (c *Courier) setVehicleType(v VehicleType) error {
	if err := v.Validate(); err != nil {
		return err
	}

	c.vehicleType = v
	return nil
}

func (c *Courier) setAvailability(a Availability) error {
	if err := a.Validate(); err != nil {
		return err
	}

	c.availability = a
	return nil
}
