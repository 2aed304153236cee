// Package constants defines shared timeouts, limits, column names and source
// endpoints used across the nsdata pipeline.
package constants

import "time"

// Timeouts
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests to sources
	DefaultHTTPTimeout = 30 * time.Second

	// CollectTimeout bounds a full multi-dataset collection run
	CollectTimeout = 30 * time.Minute
)

// File permissions
const (
	// DirPermissions is the default permission for created directories
	DirPermissions = 0755

	// FilePermissions is the default permission for created files
	FilePermissions = 0644
)

// Limits
const (
	// DefaultConcurrency is the number of datasets fetched in parallel by the collector
	DefaultConcurrency = 4

	// DefaultPageSize is the page size used for paginated sources
	DefaultPageSize = 100

	// MaxPageSize is the largest page size a paginated source accepts
	MaxPageSize = 1000

	// DefaultRateLimit is the default requests per second for paginated sources
	DefaultRateLimit = 5

	// BurstSize is the rate limiter burst
	BurstSize = 2
)

// Canonical column names of the identity tuple and indicator log.
const (
	ColumnName        = "National Society name"
	ColumnCountry     = "Country"
	ColumnISO3        = "ISO3"
	ColumnRegion      = "Region"
	ColumnIndicator   = "Indicator"
	ColumnValue       = "Value"
	ColumnYear        = "Year"
	ColumnDescription = "Description"
	ColumnURL         = "URL"
	ColumnDataset     = "Dataset"
)

// IdentityColumns is the identity tuple in canonical order.
var IdentityColumns = []string{ColumnName, ColumnCountry, ColumnISO3, ColumnRegion}

// IndicatorLogColumns is the fixed column order of the merged indicator log.
var IndicatorLogColumns = []string{
	ColumnName, ColumnCountry, ColumnISO3, ColumnRegion,
	ColumnIndicator, ColumnValue, ColumnYear, ColumnDescription, ColumnURL, ColumnDataset,
}

// Source endpoints
const (
	// DatabankURL is the IFRC National Society Databank API
	DatabankURL = "https://data-api.ifrc.org"

	// FDRSNationalSocietyURL prefixes the public FDRS page of a National Society
	FDRSNationalSocietyURL = "https://data.ifrc.org/FDRS/national-society/"

	// GOURL is the IFRC GO platform API
	GOURL = "https://goadmin.ifrc.org"

	// INFORMURL is the INFORM Risk index API
	INFORMURL = "https://drmkc.jrc.ec.europa.eu/Inform-Index/API/InformAPI"

	// WorldBankURL is the World Bank indicators API
	WorldBankURL = "https://api.worldbank.org/v2"

	// UNDPURL is the UNDP Human Development Report Office API
	UNDPURL = "http://ec2-54-174-131-205.compute-1.amazonaws.com/API/HDRO_API.php"

	// CPIURL is the Transparency International Corruption Perception Index API
	CPIURL = "https://www.transparency.org/api/latest/cpi"

	// ICRCURL is the ICRC "where we work" page
	ICRCURL = "https://www.icrc.org/en/where-we-work"
)

// Environment
const (
	// EnvPrefix prefixes every configuration environment variable
	EnvPrefix = "NSDATA"

	// EnvTestFixtures names a registry fixture file appended at first registry load
	EnvTestFixtures = "NSDATA_TEST_FIXTURES"
)
