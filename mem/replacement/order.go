package replacement

import (
	"container/list"
	"fmt"
)

// An order is a sequence of frame indices with O(1) membership lookup.
// Both policies share it: FIFO only ever appends and removes, LRU also
// moves frames to the back on access.
type order struct {
	seq      *list.List
	elements map[int]*list.Element
}

func newOrder() *order {
	return &order{
		seq:      list.New(),
		elements: make(map[int]*list.Element),
	}
}

func (o *order) pushBack(frame int) {
	o.frameMustNotExist(frame)

	o.elements[frame] = o.seq.PushBack(frame)
}

func (o *order) moveToBack(frame int) {
	o.frameMustExist(frame)

	o.seq.MoveToBack(o.elements[frame])
}

func (o *order) front() int {
	if o.seq.Len() == 0 {
		panic("no victim: replacement order is empty")
	}

	return o.seq.Front().Value.(int)
}

func (o *order) remove(frame int) {
	o.frameMustExist(frame)

	o.seq.Remove(o.elements[frame])
	delete(o.elements, frame)
}

func (o *order) len() int {
	return len(o.elements)
}

func (o *order) frameMustExist(frame int) {
	if _, found := o.elements[frame]; !found {
		panic(fmt.Sprintf("frame %d is not tracked", frame))
	}
}

func (o *order) frameMustNotExist(frame int) {
	if _, found := o.elements[frame]; found {
		panic(fmt.Sprintf("frame %d is already tracked", frame))
	}
}
