// fdk is the Fund Dev Kit. It turns the periodic CSV extracts the securities
// regulator publishes about investment funds (registration, daily quotas,
// balance sheets, portfolio composition) into one normalized document per
// fund.
//
// The pipeline runs in stages. Interfaces and the types shared by every stage
// live in this package; each stage lives in a sub-package.
//
// 1. Fetch and expand
//
//    Archives are acquired by a Fetcher (package http for the regulator's
//    portal, package aws/s3 for a mirror bucket) and expanded into a flat
//    directory of CSV files by package archive. Neither step knows anything
//    about the content of the files.
//
// 2. Ingest
//
//    Package csv reads every file of the directory on a bounded pool of
//    goroutines. Each file is decoded with the first (encoding, delimiter)
//    combination that works, its identifier column is discovered, and its
//    rows are grouped by identifier. A single goroutine merges the groups
//    into the Accumulator, replacing the whole contribution of each file, so
//    ingestion can be repeated over partial downloads without duplicating
//    anything. The Accumulator is persisted by package json.
//
// 3. Normalize
//
//    Package normalize reshapes the Accumulator into one Document per
//    identifier: a FundIdentity and four series (balances, holdings, net
//    worth, daily info) ordered by the period token of the file each row came
//    from. Values are coerced with Float, Date, String and Flag, which map
//    anything malformed to nil instead of failing. Documents whose fund name
//    or type cannot be resolved are dropped.
//
// 4. Index
//
//    Reindex keys the documents by canonical identifier (digits only). The
//    result is written by an IndexWriter (JSON file, BoltDB or LevelDB) and
//    read back through a DocumentReader.
//
// Every stage writes its artifact wholesale at the end, so a crash leaves
// the previous artifact intact and the stage can simply be run again.
package fdk
