// Package compression implements the three consolidation strategies a
// record can undergo as it ages: lossless lz4 block compression,
// lossy semantic summarization into a gist, and a hybrid of the two.
package compression
