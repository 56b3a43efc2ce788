package uav

// Battery holds the charge state of one UAV.
// Amounts are in mAh.
type Battery struct {
	capacity  float64
	remaining float64
}

// NewBattery creates a battery with the given capacity, fully charged.
func NewBattery(capacityMah float64) *Battery {
	return &Battery{
		capacity:  capacityMah,
		remaining: capacityMah,
	}
}

// NewBatteryWithCharge creates a battery with the given capacity and charge.
func NewBatteryWithCharge(capacityMah, remainingMah float64) *Battery {
	b := NewBattery(capacityMah)
	if remainingMah < capacityMah {
		b.remaining = remainingMah
	}
	if b.remaining < 0 {
		b.remaining = 0
	}
	return b
}

// Discharge reduces the remaining charge, clamped at zero.
func (b *Battery) Discharge(amount float64) {
	b.remaining -= amount
	if b.remaining < 0 {
		b.remaining = 0
	}
}

// Charge increases the remaining charge, clamped at capacity.
func (b *Battery) Charge(amount float64) {
	b.remaining += amount
	if b.remaining > b.capacity {
		b.remaining = b.capacity
	}
}

// IsFull returns true when the battery is at capacity.
func (b *Battery) IsFull() bool {
	return b.remaining >= b.capacity
}

// IsEmpty returns true when no charge remains.
func (b *Battery) IsEmpty() bool {
	return b.remaining <= 0
}

// Remaining returns the remaining charge in mAh.
func (b *Battery) Remaining() float64 {
	return b.remaining
}

// Capacity returns the battery capacity in mAh.
func (b *Battery) Capacity() float64 {
	return b.capacity
}

// RemainingPercentage returns the remaining charge as a percentage.
func (b *Battery) RemainingPercentage() float64 {
	if b.capacity <= 0 {
		return 0
	}
	return b.remaining / b.capacity * 100.0
}
