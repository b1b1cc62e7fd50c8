package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsWholeBatch(t *testing.T) {
	ok := bolt()
	missingUnit := bolt()
	missingUnit.Unit = ""

	err := Validate(purchase, []entity.Candidate{ok, missingUnit})
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Problems, 1)
	assert.Equal(t, 1, vErr.Problems[0].Index)
	assert.Equal(t, []string{entity.FieldUnit}, vErr.Problems[0].Missing)
	assert.Contains(t, err.Error(), "第 2 条")
}

func TestValidateQuantity(t *testing.T) {
	zero := decimal.Zero
	c := bolt()
	c.Quantity = &zero
	assert.Error(t, Validate(purchase, []entity.Candidate{c}))

	c.Quantity = nil
	assert.Error(t, Validate(purchase, []entity.Candidate{c}))

	tiny := decimal.RequireFromString("0.00001")
	c.Quantity = &tiny
	assert.Error(t, Validate(purchase, []entity.Candidate{c}), "rounds to zero at column scale")

	assert.NoError(t, Validate(purchase, []entity.Candidate{bolt()}))
}

func TestValidateKindSpecificFields(t *testing.T) {
	cutting := entity.MustKind(entity.KindCutting)
	c := bolt()
	err := Validate(cutting, []entity.Candidate{c})
	require.Error(t, err)
	assert.Contains(t, err.Error(), entity.FieldProjectName)

	c.ProjectName = "工装A"
	assert.NoError(t, Validate(cutting, []entity.Candidate{c}))
}

func TestValidateEmptyBatch(t *testing.T) {
	assert.Error(t, Validate(purchase, nil))
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	a := entity.Candidate{InventoryNumber: "INV-1", PartID: "P1", Remark: "first"}
	b := entity.Candidate{InventoryNumber: "INV-1", PartID: "P1", Remark: "second"}
	c := entity.Candidate{InventoryNumber: "INV-1", PartID: "P2"}
	blank1 := entity.Candidate{PartName: "x"}
	blank2 := entity.Candidate{PartName: "y"}

	items, dropped := Dedupe([]entity.Candidate{a, b, c, blank1, blank2})
	assert.Equal(t, 1, dropped)
	require.Len(t, items, 4)
	assert.Equal(t, "first", items[0].Candidate.Remark)
	assert.Equal(t, []int{0, 2, 3, 4}, []int{items[0].Index, items[1].Index, items[2].Index, items[3].Index})
}

func TestIdentityOfPriority(t *testing.T) {
	cases := []struct {
		name string
		c    entity.Candidate
		want string
	}{
		{"child wins", entity.Candidate{ChildItemID: "X", PartID: "Y", InventoryNumber: "I"}, "child_item_id:X"},
		{"part", entity.Candidate{PartID: "Y", ToolingID: "T", PartName: "n"}, "part_id:Y"},
		{"tooling pair", entity.Candidate{ToolingID: "T", PartName: "n", InventoryNumber: "I"}, "tooling_part_name:T|n"},
		{"tooling without name", entity.Candidate{ToolingID: "T", InventoryNumber: "I"}, "inventory_number:I"},
		{"none", entity.Candidate{PartName: "n"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IdentityOf(purchase, tc.c).String())
		})
	}
}

func TestChangedTreatsEmptyAsEqual(t *testing.T) {
	existing := entity.Order{PartName: "Bolt", Quantity: decimal.NewFromInt(5), Unit: "pcs"}
	desired := Desired(entity.Candidate{PartName: "Bolt", Quantity: qty(5), Unit: "pcs"}, Derived{})
	assert.Empty(t, ChangedFields(existing, desired))

	w := decimal.RequireFromString("1.50")
	desired.Weight = entity.NullDecimal(&w)
	existing.Weight = decimal.NewNullDecimal(decimal.RequireFromString("1.5"))
	assert.Empty(t, ChangedFields(existing, desired))

	desired.Weight = decimal.NullDecimal{}
	assert.Equal(t, []string{entity.FieldWeight}, ChangedFields(existing, desired))
}

func TestChangedFieldsIncludesBackfilled(t *testing.T) {
	existing := entity.Order{PartName: "Bolt", Quantity: decimal.NewFromInt(5), Unit: "pcs"}
	desired := Desired(entity.Candidate{PartName: "Bolt", Quantity: qty(5), Unit: "pcs"}, Derived{DemandDate: "2024-06-01", Applicant: "李工"})
	assert.Equal(t, []string{entity.FieldDemandDate, entity.FieldApplicant}, ChangedFields(existing, desired))
}

func TestChangedFieldsSuppliedStatusAndIDs(t *testing.T) {
	existing := entity.Order{PartName: "Bolt", Quantity: decimal.NewFromInt(5), Unit: "pcs", Status: "ordered", ChildItemID: entity.StrPtr("c1")}

	same := Desired(entity.Candidate{PartName: "Bolt", Quantity: qty(5), Unit: "pcs", ChildItemID: "c1"}, Derived{})
	assert.Empty(t, ChangedFields(existing, same))

	c := entity.Candidate{PartName: "Bolt", Quantity: qty(5), Unit: "pcs", ChildItemID: "c1", PartID: "p9", Status: "received"}
	assert.Equal(t, []string{entity.FieldStatus, entity.FieldPartID}, ChangedFields(existing, Desired(c, Derived{})))
}

func TestDesiredRoundsToColumnScale(t *testing.T) {
	q := decimal.RequireFromString("1.23456")
	w := decimal.RequireFromString("0.00004")
	d := Desired(entity.Candidate{Quantity: &q, Weight: &w}, Derived{})
	assert.Equal(t, "1.2346", d.Quantity.String())
	assert.True(t, d.Weight.Valid)
	assert.True(t, d.Weight.Decimal.IsZero())
}

func TestMergeKeepsIdentityAndStatus(t *testing.T) {
	existing := entity.Order{ID: "o1", Status: "ordered", PartID: entity.StrPtr("p1"), ToolingID: entity.StrPtr("T1")}
	desired := Desired(entity.Candidate{PartName: "Bolt", Quantity: qty(2), Unit: "pcs"}, Derived{})

	merged := Merge(existing, desired)
	assert.Equal(t, "o1", merged.ID)
	assert.Equal(t, "ordered", merged.Status)
	assert.Equal(t, "p1", entity.StrVal(merged.PartID))
	assert.Equal(t, "T1", entity.StrVal(merged.ToolingID))
	assert.Equal(t, "Bolt", merged.PartName)
}

func TestExtractDate(t *testing.T) {
	assert.Equal(t, "2024-03-15", ExtractDate("交期 2024-03-15，另有 2024-04-01"))
	assert.Empty(t, ExtractDate("尽快"))
	assert.Empty(t, ExtractDate(""))
}

func TestBackfillCascade(t *testing.T) {
	related := newFakeRelated()
	related.parts["p1"] = &entity.ToolingPart{ID: "p1", Notes: "需求日期2024-07-08请安排"}
	related.childItems["c1"] = &entity.ChildItem{ID: "c1", ToolingID: "T1", Name: "Pin", RequiredDate: "2024-08-01"}
	b := NewBackfiller(related, nil)
	ctx := context.Background()

	assert.Equal(t, "2024-07-08", b.Resolve(ctx, entity.Candidate{PartID: "p1", ChildItemID: "c1"}, nil).DemandDate)
	assert.Equal(t, "2024-08-01", b.Resolve(ctx, entity.Candidate{ChildItemID: "c1"}, nil).DemandDate)
	assert.Equal(t, "2024-08-01", b.Resolve(ctx, entity.Candidate{ToolingID: "T1", PartName: "Pin"}, nil).DemandDate)
	assert.Empty(t, b.Resolve(ctx, entity.Candidate{PartID: "missing"}, nil).DemandDate)

	// 候选记录自带值时不查询
	related.calls = 0
	d := b.Resolve(ctx, entity.Candidate{DemandDate: "2025-01-01", ProductionUnit: "u", Applicant: "a", ToolingID: "T1"}, nil)
	assert.Equal(t, Derived{DemandDate: "2025-01-01", ProductionUnit: "u", Applicant: "a"}, d)
	assert.Zero(t, related.calls)
}

func TestBackfillSwallowsLookupErrors(t *testing.T) {
	related := newFakeRelated()
	related.err = errors.New("connection reset")
	b := NewBackfiller(related, nil)

	existing := &entity.Order{ProductionUnit: "二车间"}
	d := b.Resolve(context.Background(), entity.Candidate{PartID: "p1", ToolingID: "T1"}, existing)
	assert.Equal(t, Derived{ProductionUnit: "二车间"}, d)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyIsolate, p)

	p, err = ParsePolicy("fail_fast")
	require.NoError(t, err)
	assert.Equal(t, PolicyFailFast, p)

	_, err = ParsePolicy("retry")
	assert.Error(t, err)
}
