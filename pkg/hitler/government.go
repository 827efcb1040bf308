package hitler

// Government names the two seats holding power during a legislative
// session: the elected president and their nominated chancellor.
type Government struct {
	President  int
	Chancellor int
}
