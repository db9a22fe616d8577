// Package scraper fetches official game report pages and schedule feeds.
//
// HTTPFetcher is the default: a plain GET with a descriptive User-Agent and
// exponential backoff on transient failures. BrowserFetcher renders the page
// in headless Chrome for pages that build their content with JavaScript, such
// as the league's game center. Both satisfy Fetcher.
package scraper
