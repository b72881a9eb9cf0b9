package kernel

import "ember/hal"

// critical is a scoped interrupt mask. exit restores exactly the state seen
// by enter, so sections nest without a counter:
//
//	cs := k.enter()
//	defer cs.exit()
type critical struct {
	core  *hal.Core
	state hal.IntrState
}

func (k *Kernel) enter() critical {
	return critical{core: k.core, state: k.core.DisableInterrupts()}
}

func (cs critical) exit() {
	cs.core.RestoreInterrupts(cs.state)
}
