package market

// FixedDevice is a simple stateless reference Device whose supply/demand
// for each slot comes from a fixed per-slot profile. Charge/Discharge are
// no-ops that report the requested amount, matching a DER with no storage
// of its own. Useful for tests and demos, keeping a small deterministic
// stand-in alongside the stateful ESS.
type FixedDevice struct {
	ID            string
	SupplyProfile map[Schedule]float64
	DemandProfile map[Schedule]float64
	DeviceMode    DeviceMode
	Role          EnergyRole
}

// DeviceID implements Device.
func (d *FixedDevice) DeviceID() string { return d.ID }

// Supply implements Device.
func (d *FixedDevice) Supply(s Schedule) float64 {
	return d.SupplyProfile[s]
}

// Demand implements Device.
func (d *FixedDevice) Demand(s Schedule) float64 {
	return d.DemandProfile[s]
}

// Charge implements Device as a no-op: FixedDevice has no storage.
func (d *FixedDevice) Charge(_ Schedule, _ float64) {}

// Discharge implements Device: a stateless producer always delivers the
// full requested amount.
func (d *FixedDevice) Discharge(_ Schedule, amount float64) float64 {
	return amount
}

// Mode implements Device.
func (d *FixedDevice) Mode() DeviceMode { return d.DeviceMode }

// EnergyRole implements Device.
func (d *FixedDevice) EnergyRole() EnergyRole { return d.Role }
