// Package indexwatch provides a Go client that verifies what a backup job
// left in a Solr-compatible index.
//
// The client assembles select URLs from filter expressions, counts and pages
// documents, waits for a job's indexed count to settle and checks that every
// item of a job was played into the index.
//
//	client, _ := indexwatch.New(
//	    indexwatch.WithIndex("http://solr:20000", "sharepointindex", backupsetID),
//	    indexwatch.WithPolling(30*time.Second, 10),
//	)
//	out, err := client.WaitForJob(ctx, "100")
//	if errors.Is(err, indexwatch.ErrNotIndexed) {
//	    // nothing was indexed for the job
//	}
//
// # Filter expressions
//
//	JobId=100               field match
//	Type=1,2                any of the values
//	Title|Body=report       any of the fields
//	keyword=JobId:100 OR x  raw query, every other expression is ignored
package indexwatch
