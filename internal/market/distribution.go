package market

// Distribution routes the energy flow of a settled Trade from its supplier
// device to its consumer device: producer supply is discharged, external
// grid supply is allocated (and billed), and the consumer is charged with
// whatever actually flowed.
type Distribution struct {
	devices   map[string]Device
	external  *ExternalGrid
	sinks     []Sink
	onDropped func(trade Trade, err error)
}

// NewDistribution builds a Distribution with an empty device registry over
// the given external grid. Devices must be registered (via Register) before any
// trade referencing them is applied.
func NewDistribution(external *ExternalGrid) *Distribution {
	return &Distribution{
		devices:  make(map[string]Device),
		external: external,
	}
}

// Register adds a device to the resolvable registry.
func (d *Distribution) Register(dev Device) {
	d.devices[dev.DeviceID()] = dev
}

// AddSink attaches an observer that receives a FlowRecord for every
// successfully applied trade.
func (d *Distribution) AddSink(s Sink) {
	d.sinks = append(d.sinks, s)
}

// OnDropped registers a callback invoked whenever Apply drops a trade for
// an unknown device. The engine uses this to log the condition rather than
// propagate it.
func (d *Distribution) OnDropped(fn func(trade Trade, err error)) {
	d.onDropped = fn
}

// Apply routes trade's energy flow for slot s. A trade with Amount<=0 is a
// no-op. If either endpoint is unknown, the operation fails softly: no
// mutation occurs and ErrUnknownDevice is returned; the caller drops the
// trade and continues.
func (d *Distribution) Apply(trade Trade, s Schedule) error {
	if trade.Amount <= 0 {
		return nil
	}

	consumer, ok := d.devices[trade.ConsumerDeviceID]
	if !ok {
		return ErrUnknownDevice
	}

	var flow float64
	switch {
	case trade.SupplierDeviceID == GridName:
		flow = d.external.Allocate(trade.ConsumerID, trade.Amount, s)
	default:
		producer, ok := d.devices[trade.SupplierDeviceID]
		if !ok {
			return ErrUnknownDevice
		}
		flow = producer.Discharge(s, trade.Amount)
	}

	consumer.Charge(s, flow)

	for _, sink := range d.sinks {
		sink.Record(FlowRecord{Trade: trade, Schedule: s, Datetime: s.String()})
	}
	return nil
}

// ApplyAll applies every trade in trades, in order, dropping (and ignoring)
// any that fail with ErrUnknownDevice. All non-fatal distribution failures
// are absorbed locally; no error propagates past this call.
func (d *Distribution) ApplyAll(trades []Trade, s Schedule) {
	for _, t := range trades {
		if err := d.Apply(t, s); err != nil && d.onDropped != nil {
			d.onDropped(t, err)
		}
	}
}
