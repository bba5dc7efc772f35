package admin

import (
	"net/http"

	"github.com/rvishwa/go-storefront/app/repositories"
	"github.com/rvishwa/go-storefront/app/utils/apierr"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

type DashboardHandler struct {
	render    *render.Render
	statsRepo repositories.StatsRepositoryImpl
}

func NewDashboardHandler(r *render.Render, statsRepo repositories.StatsRepositoryImpl) *DashboardHandler {
	return &DashboardHandler{
		render:    r,
		statsRepo: statsRepo,
	}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsRepo.Dashboard(r.Context())
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

type chartResponse struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
}

func bucketsToChart(buckets []repositories.MonthlyBucket) chartResponse {
	chart := chartResponse{Labels: []string{}, Values: []decimal.Decimal{}}
	for _, b := range buckets {
		chart.Labels = append(chart.Labels, b.Month)
		chart.Values = append(chart.Values, b.Value)
	}
	return chart
}

func (h *DashboardHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.statsRepo.MonthlyRevenue(r.Context())
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	_ = h.render.JSON(w, http.StatusOK, bucketsToChart(buckets))
}

func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	top, err := h.statsRepo.TopProducts(r.Context(), 5)
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	trends, err := h.statsRepo.MonthlyOrderCounts(r.Context())
	if err != nil {
		apierr.Write(h.render, w, err)
		return
	}

	topLabels := make([]string, 0, len(top))
	topValues := make([]int64, 0, len(top))
	for _, t := range top {
		topLabels = append(topLabels, t.Name)
		topValues = append(topValues, t.UnitsSold)
	}

	_ = h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"topProducts": map[string]interface{}{
			"labels": topLabels,
			"values": topValues,
		},
		"orderTrends": bucketsToChart(trends),
	})
}
