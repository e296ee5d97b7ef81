package main

import (
	"fmt"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/yaml"
)

// Run executes the behaviors command. The output is a valid config file and
// a starting point for site-specific behaviors.
func (c *BehaviorsCmd) Run(deps *Dependencies) error {
	out, err := yaml.MarshalBehaviors(deps.Behaviors)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", unfold.ErrorMessage(err))
		return err
	}
	_, err = deps.Stdout.Write(out)
	return err
}
