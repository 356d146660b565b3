package replacement

// lruPolicy evicts the least-recently-used frame. Every hit moves the frame
// to the back of the order.
type lruPolicy struct {
	order *order
}

func (p *lruPolicy) OnAdmit(frame int) {
	p.order.pushBack(frame)
}

func (p *lruPolicy) OnAccess(frame int) {
	p.order.moveToBack(frame)
}

func (p *lruPolicy) SelectVictim() int {
	return p.order.front()
}

func (p *lruPolicy) OnEvict(frame int) {
	p.order.remove(frame)
}

func (p *lruPolicy) Size() int {
	return p.order.len()
}
