// Package catalog turns a list of dataset records into the ordered list of
// documents to download.
//
// A record groups several documents through parallel lists (res_format,
// res_url, res_name). Each document becomes an Item with the ID
// "<record id>_<index>" and a lower-cased format. Records with a missing
// ID, an empty list, or lists of different length are discarded and
// counted in Stats.IllFormed.
//
// # Catalog file
//
//	[
//	  {
//	    "id": "c1a2",
//	    "title": "Haushaltsplan 2019",
//	    "publishing_date": "2019-07-11T00:00:00Z",
//	    "res_format": ["PDF", "csv"],
//	    "res_url": ["https://example.org/a.pdf", "https://example.org/b.csv"],
//	    "res_name": ["Plan", "Tabelle"]
//	  }
//	]
//
// Files ending in .yaml or .yml are decoded as YAML with the same keys.
package catalog
