package replacement

// fifoPolicy evicts frames in admission order. Hits do not reorder.
type fifoPolicy struct {
	order *order
}

func (p *fifoPolicy) OnAdmit(frame int) {
	p.order.pushBack(frame)
}

func (p *fifoPolicy) OnAccess(_ int) {
	// Admission order only.
}

func (p *fifoPolicy) SelectVictim() int {
	return p.order.front()
}

func (p *fifoPolicy) OnEvict(frame int) {
	p.order.remove(frame)
}

func (p *fifoPolicy) Size() int {
	return p.order.len()
}
