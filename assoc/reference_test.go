package assoc

import (
	"testing"
)

func TestReferenceAssociation(t *testing.T) {
	observations := NewObservationSet(
		NewObservation(NewPoint(10.1, 10)),
		NewObservation(NewPoint(0, 0.1)),
		NewObservation(NewPoint(50, 50)),
	)
	targets := []Target{NewTarget(1, 0, 0), NewTarget(2, 10, 10)}
	likelihood, err := NewGaussianLikelihood(observations, targets, 1, 10000)
	if err != nil {
		t.Fatal(err)
	}

	reference, err := ReferenceAssociation(likelihood, observations.Len(), targets, 100)
	if err != nil {
		t.Fatal(err)
	}
	expected := NewDataAssociation()
	expected.Set(2, 0)
	expected.Set(1, 1)
	if !reference.Equal(expected) {
		t.Errorf("Expected %s, got %s", expected, reference)
	}
}

func TestReferenceAssociationNewborn(t *testing.T) {
	table := NewLikelihoodTable(2, 1)
	table.Set(0, ExistingHypothesis(0), -1)
	table.Set(0, ClutterHypothesis(), -10)
	table.Set(0, NewbornHypothesis(), -5)
	table.Set(1, ExistingHypothesis(0), -2)
	table.Set(1, ClutterHypothesis(), -10)
	table.Set(1, NewbornHypothesis(), -4)

	// Observation 0 claims the target, observation 1 is better explained by a newborn
	reference, err := ReferenceAssociation(table, 2, []Target{NewTarget(5)}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !reference.AreAssociated(5, 0) || !reference.AreAssociated(100, 1) || reference.Len() != 2 {
		t.Errorf("Expected 0->5 1->100, got %s", reference)
	}

	empty, err := ReferenceAssociation(table, 0, nil, 100)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != 0 {
		t.Errorf("Expected empty association, got %s", empty)
	}
}

func TestReferenceAssociationSlackOrder(t *testing.T) {
	// Observations 0 and 2 prefer newborn, observation 1 the only target
	table := NewLikelihoodTable(3, 1)
	for m, values := range [][3]float64{{-9, -6, -1}, {-9, -1, -6}, {-9, -6, -2}} {
		table.Set(m, ClutterHypothesis(), values[0])
		table.Set(m, ExistingHypothesis(0), values[1])
		table.Set(m, NewbornHypothesis(), values[2])
	}
	reference, err := ReferenceAssociation(table, 3, []Target{NewTarget(5)}, 100)
	if err != nil {
		t.Fatal(err)
	}
	expected := NewDataAssociation()
	expected.Set(100, 0)
	expected.Set(5, 1)
	expected.Set(101, 2)
	if !reference.Equal(expected) {
		t.Errorf("Expected %s, got %s", expected, reference)
	}

	// Clutter wins over newborn: slack assignment leaves observation unassociated
	clutterTable := NewLikelihoodTable(2, 1)
	clutterTable.Set(0, ClutterHypothesis(), -1)
	clutterTable.Set(0, ExistingHypothesis(0), -8)
	clutterTable.Set(0, NewbornHypothesis(), -3)
	clutterTable.Set(1, ClutterHypothesis(), -9)
	clutterTable.Set(1, ExistingHypothesis(0), -1)
	clutterTable.Set(1, NewbornHypothesis(), -9)
	reference, err = ReferenceAssociation(clutterTable, 2, []Target{NewTarget(5)}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if reference.Len() != 1 || !reference.AreAssociated(5, 1) {
		t.Errorf("Expected only 1->5, got %s", reference)
	}
}
