package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/entity"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/order/repository"
	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/testutil"
)

func TestRelatedRepositoryLookups(t *testing.T) {
	gw := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := repository.NewRelatedRepository(gw)

	gw.DB().Create(&entity.ToolingInfo{ID: "T1", ProductionUnit: "一车间", ApplicantName: "王工"})
	gw.DB().Create(&entity.ChildItem{ID: "c2", ToolingID: "T1", Name: "Bolt", RequiredDate: "2024-07-01", CreatedAt: time.Now()})
	gw.DB().Create(&entity.ChildItem{ID: "c1", ToolingID: "T1", Name: "Bolt", RequiredDate: "2024-05-01", CreatedAt: time.Now().Add(-time.Hour)})

	tooling, err := repo.FindTooling(ctx, "T1")
	if err != nil || tooling == nil || tooling.ApplicantName != "王工" {
		t.Fatalf("Expected tooling T1, got %+v, %v", tooling, err)
	}

	missing, err := repo.FindTooling(ctx, "T404")
	if err != nil || missing != nil {
		t.Fatalf("Expected nil, nil for missing tooling, got %+v, %v", missing, err)
	}

	item, err := repo.FindChildItemByName(ctx, "T1", "Bolt")
	if err != nil || item == nil || item.ID != "c1" {
		t.Fatalf("Expected earliest child item c1, got %+v, %v", item, err)
	}

	part, err := repo.FindPart(ctx, "nope")
	if err != nil || part != nil {
		t.Fatalf("Expected nil, nil for missing part, got %+v, %v", part, err)
	}
}
