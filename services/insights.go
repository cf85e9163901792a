package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"realestate-scraper/models"
	"realestate-scraper/utils"
)

// wardRegexp captures the ward (区) or city (市) part of a Tokyo address.
var wardRegexp = regexp.MustCompile(`^(?:東京都)?(.+?[区市])`)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises a run's records. Ratio and yield averages only cover
// records whose secondary values were actually measured.
func (s *InsightService) Generate(records []models.ListingRecord) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByWard: make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalListings = len(records)

	var (
		priceTotal float64
		priced     int
		ratioTotal float64
		yieldTotal float64
		yielding   []*models.ListingRecord
	)

	for i := range records {
		r := &records[i]

		if r.SecondaryDetailURL != "" {
			report.Correlated++
		}
		if ward := wardOf(r.Address); ward != "" {
			report.ListingsByWard[ward]++
		}

		if r.Price > 0 {
			priceTotal += float64(r.Price)
			if priced == 0 || r.Price < report.MinPrice {
				report.MinPrice = r.Price
			}
			if r.Price > report.MaxPrice {
				report.MaxPrice = r.Price
			}
			priced++
		}

		if r.MarketPriceKnown && r.Price > 0 {
			report.WithMarketPrice++
			ratioTotal += r.MarketToPriceRatio
			if report.MostUndervalued == nil || r.MarketToPriceRatio > report.MostUndervalued.MarketToPriceRatio {
				report.MostUndervalued = r
			}
		}
		if r.RentKnown && r.Price > 0 {
			report.WithRent++
			yieldTotal += r.EstimatedYield
			yielding = append(yielding, r)
		}
	}

	if priced > 0 {
		report.AveragePrice = priceTotal / float64(priced)
	}
	if report.WithMarketPrice > 0 {
		report.AverageRatio = ratioTotal / float64(report.WithMarketPrice)
	}
	if report.WithRent > 0 {
		report.AverageYield = yieldTotal / float64(report.WithRent)
	}

	// Top 5 by estimated yield
	sort.SliceStable(yielding, func(i, j int) bool {
		return yielding[i].EstimatedYield > yielding[j].EstimatedYield
	})
	if len(yielding) > 5 {
		report.TopYield = yielding[:5]
	} else {
		report.TopYield = yielding
	}

	s.logger.Debug("[insights] %d records, %d with market price, %d with rent",
		report.TotalListings, report.WithMarketPrice, report.WithRent)
	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 CONDOMINIUM VALUATION SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Named listings         : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Matched on review site : \033[1m%d\033[0m\n", r.Correlated)
	fmt.Printf("  With market price      : \033[1m%d\033[0m\n", r.WithMarketPrice)
	fmt.Printf("  With rent benchmark    : \033[1m%d\033[0m\n", r.WithRent)
	fmt.Println()

	// Price Stats
	fmt.Printf("\033[1;33m  Price Statistics (万円)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Printf("  Average price : \033[1;32m%.1f\033[0m\n", r.AveragePrice)
		fmt.Printf("  Minimum price : \033[1;32m%d\033[0m\n", r.MinPrice)
		fmt.Printf("  Maximum price : \033[1;32m%d\033[0m\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	if r.WithMarketPrice > 0 {
		fmt.Printf("  Avg market/price ratio : \033[1;32m%.1f%%\033[0m\n", r.AverageRatio)
	}
	if r.WithRent > 0 {
		fmt.Printf("  Avg estimated yield    : \033[1;32m%.2f%%\033[0m\n", r.AverageYield)
	}
	fmt.Println()

	// Most undervalued
	if r.MostUndervalued != nil {
		fmt.Printf("\033[1;33m  Highest Market/Price Ratio\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostUndervalued.BuildingName, 50))
		fmt.Printf("  Address : %s\n", r.MostUndervalued.Address)
		fmt.Printf("  Ratio   : \033[1;31m%.1f%%\033[0m\n", r.MostUndervalued.MarketToPriceRatio)
		fmt.Println()
	}

	// ── TOP 5 BY YIELD ───────────────────────────────────────────────────
	fmt.Printf("\033[1;33m  Top 5 Estimated Yields\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopYield) == 0 {
		fmt.Printf("  No rent benchmarks found\n")
	} else {
		for i, l := range r.TopYield {
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.2f%%\033[0m\n",
				i+1, truncate(l.BuildingName, 38), l.EstimatedYield)
		}
	}
	fmt.Println()

	// Listings by ward
	fmt.Printf("\033[1;33m  Listings by Ward\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByWard) == 0 {
		fmt.Printf("  No address data\n")
	} else {
		type wardCount struct {
			ward  string
			count int
		}
		var wards []wardCount
		for ward, cnt := range r.ListingsByWard {
			wards = append(wards, wardCount{ward, cnt})
		}
		sort.Slice(wards, func(i, j int) bool {
			if wards[i].count == wards[j].count {
				return wards[i].ward < wards[j].ward
			}
			return wards[i].count > wards[j].count
		})
		for _, wc := range wards {
			bar := strings.Repeat("█", wc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(wc.ward, 28), bar, wc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func wardOf(address string) string {
	m := wardRegexp.FindStringSubmatch(strings.TrimSpace(address))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// truncate shortens s to max runes; names are mostly multi-byte.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
